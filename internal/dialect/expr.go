package dialect

import (
	"strconv"
	"strings"
)

// SortOrder is the direction of an ordering key.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// String returns the SQL keyword.
func (o SortOrder) String() string {
	if o == "" {
		return string(Asc)
	}
	return string(o)
}

type column string

// Col references a column, quoted by the dialect when needed.
func Col(name string) Expression { return column(name) }

func (c column) WriteSQL(b *Builder) error {
	return b.Append(b.Dialect().Identifier(string(c)))
}

type stringLiteral string

// Lit is a string literal.
func Lit(s string) Expression { return stringLiteral(s) }

func (s stringLiteral) WriteSQL(b *Builder) error {
	return b.Append(QuoteString(string(s)))
}

type intLiteral int

// Int is an integer literal.
func Int(n int) Expression { return intLiteral(n) }

func (n intLiteral) WriteSQL(b *Builder) error {
	return b.Append(strconv.Itoa(int(n)))
}

type raw string

// Raw is SQL text written verbatim.
func Raw(sql string) Expression { return raw(sql) }

func (r raw) WriteSQL(b *Builder) error {
	return b.Append(string(r))
}

// QuoteString returns s as a SQL string literal with embedded quotes doubled.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// OrderKey is one entry of an ORDER BY list.
type OrderKey struct {
	Expr  Expression
	Order SortOrder
}

// By returns an ordering key.
func By(e Expression, order SortOrder) OrderKey {
	return OrderKey{Expr: e, Order: order}
}

// DatePart selects a field of a date or time value.
type DatePart string

const (
	Year   DatePart = "YEAR"
	Month  DatePart = "MONTH"
	Day    DatePart = "DAY"
	Hour   DatePart = "HOUR"
	Minute DatePart = "MINUTE"
	Second DatePart = "SECOND"
)

// Function call nodes. Each delegates to the builder's FunctionProvider and
// writes atomically.

// Random is a random number, optionally seeded.
type Random struct {
	Seed *int
}

func (f Random) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().Random(b, f.Seed) })
}

// CharLength is the length of a string in characters.
type CharLength struct {
	Expr Expression
}

func (f CharLength) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().CharLength(b, f.Expr) })
}

// Substring extracts Length characters starting at Start (1-based).
type Substring struct {
	Expr   Expression
	Start  Expression
	Length Expression
}

func (f Substring) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().Substring(b, f) })
}

// Concat concatenates expressions, with Separator between them when set.
type Concat struct {
	Separator string
	Exprs     []Expression
}

func (f Concat) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().Concat(b, f) })
}

// GroupConcat concatenates the values of a group into one string.
type GroupConcat struct {
	Expr      Expression
	Separator *string
	Distinct  bool
	OrderBy   []OrderKey
}

func (f GroupConcat) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().GroupConcat(b, f) })
}

// Locate is the 1-based position of Substring in Expr, 0 when absent.
type Locate struct {
	Expr      Expression
	Substring string
}

func (f Locate) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().Locate(b, f) })
}

// Regexp matches Expr against Pattern.
type Regexp struct {
	Expr          Expression
	Pattern       Expression
	CaseSensitive bool
}

func (f Regexp) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().Regexp(b, f) })
}

// Extract takes one DatePart of a temporal expression.
type Extract struct {
	Part DatePart
	Expr Expression
}

func (f Extract) WriteSQL(b *Builder) error {
	return b.Atomic(func() error { return b.Dialect().Functions().Extract(b, f) })
}
