package dialect

// FunctionProvider renders logical function calls into a Builder. Methods
// never perform I/O; a method that fails returns an error and the calling
// node discards whatever was written.
type FunctionProvider interface {
	Random(b *Builder, seed *int) error
	CharLength(b *Builder, expr Expression) error
	Substring(b *Builder, f Substring) error
	Concat(b *Builder, f Concat) error
	GroupConcat(b *Builder, f GroupConcat) error
	Locate(b *Builder, f Locate) error
	Regexp(b *Builder, f Regexp) error
	Extract(b *Builder, f Extract) error
}

// BaseFunctions renders the common syntax families. Vendor providers embed
// it and override the calls whose syntax differs.
type BaseFunctions struct{}

// Random renders RANDOM(seed).
func (BaseFunctions) Random(b *Builder, seed *int) error {
	if seed == nil {
		return b.Append("RANDOM()")
	}
	return b.Append("RANDOM(", *seed, ")")
}

// CharLength renders CHAR_LENGTH(expr).
func (BaseFunctions) CharLength(b *Builder, expr Expression) error {
	return b.Append("CHAR_LENGTH(", expr, ")")
}

// Substring renders SUBSTRING(expr, start, length).
func (BaseFunctions) Substring(b *Builder, f Substring) error {
	return WriteCall(b, "SUBSTRING", f.Expr, f.Start, f.Length)
}

// Concat renders CONCAT(a, b, ...) or CONCAT_WS('sep', a, b, ...).
func (BaseFunctions) Concat(b *Builder, f Concat) error {
	if len(f.Exprs) == 0 {
		return Misconfigured(b.Dialect().Name(), "concat", "no expressions to concatenate")
	}
	if f.Separator == "" {
		return WriteCall(b, "CONCAT", f.Exprs...)
	}
	return WriteCall(b, "CONCAT_WS", append([]Expression{Lit(f.Separator)}, f.Exprs...)...)
}

// GroupConcat renders GROUP_CONCAT([DISTINCT] expr [ORDER BY ...] [SEPARATOR 'sep']).
func (BaseFunctions) GroupConcat(b *Builder, f GroupConcat) error {
	if err := b.Append("GROUP_CONCAT("); err != nil {
		return err
	}
	if f.Distinct {
		if err := b.Append("DISTINCT "); err != nil {
			return err
		}
	}
	if err := b.Append(f.Expr); err != nil {
		return err
	}
	if len(f.OrderBy) > 0 {
		if err := b.Append(" ORDER BY "); err != nil {
			return err
		}
		if err := WriteOrderKeys(b, f.OrderBy); err != nil {
			return err
		}
	}
	if f.Separator != nil {
		if err := b.Append(" SEPARATOR ", Lit(*f.Separator)); err != nil {
			return err
		}
	}
	return b.Append(")")
}

// Locate renders LOCATE('substring', expr).
func (BaseFunctions) Locate(b *Builder, f Locate) error {
	return WriteCall(b, "LOCATE", Lit(f.Substring), f.Expr)
}

// Regexp renders REGEXP_LIKE(expr, pattern, flag).
func (BaseFunctions) Regexp(b *Builder, f Regexp) error {
	flag := "i"
	if f.CaseSensitive {
		flag = "c"
	}
	return WriteCall(b, "REGEXP_LIKE", f.Expr, f.Pattern, Lit(flag))
}

// Extract renders EXTRACT(part FROM expr).
func (BaseFunctions) Extract(b *Builder, f Extract) error {
	return b.Append("EXTRACT(", string(f.Part), " FROM ", f.Expr, ")")
}

// WriteCall writes name(arg, arg, ...).
func WriteCall(b *Builder, name string, args ...Expression) error {
	if err := b.Append(name, "("); err != nil {
		return err
	}
	if err := b.AppendList(", ", args...); err != nil {
		return err
	}
	return b.Append(")")
}

// WriteOrderKeys writes "expr ASC, expr DESC, ...".
func WriteOrderKeys(b *Builder, keys []OrderKey) error {
	for i, key := range keys {
		if i > 0 {
			if err := b.Append(", "); err != nil {
				return err
			}
		}
		if err := b.Append(key.Expr, " ", key.Order); err != nil {
			return err
		}
	}
	return nil
}
