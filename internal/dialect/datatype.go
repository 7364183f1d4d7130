package dialect

import (
	"fmt"

	"github.com/koba/sqldialect/internal/schema"
)

// DataTypeProvider maps logical column types to vendor type syntax.
// Implementations hold only static vendor knowledge, so every method is
// deterministic and safe to call concurrently.
type DataTypeProvider interface {
	BooleanType() string
	ByteType() string
	UByteType() string
	ShortType() string
	UShortType() string
	IntegerType() string
	UIntegerType() string
	LongType() string
	ULongType() string
	FloatType() string
	DoubleType() string
	DecimalType(precision, scale int) (string, error)
	CharType(length int) (string, error)
	VarcharType(length int) (string, error)
	TextType() string
	// BinaryType renders binary storage; length 0 means no length was given.
	BinaryType(length int) (string, error)
	BlobType() string
	UUIDType() string
	DateType() string
	TimeType() string
	DateTimeType() string
	IntegerAutoincType() string
	LongAutoincType() string

	// Widens reports whether kind is stored in a wider type than its
	// logical width because the vendor has no exact match.
	Widens(kind schema.ColumnKind) bool
}

// BaseDataTypes supplies SQL-92 style defaults. Vendor providers embed it
// and override only the methods whose syntax differs.
type BaseDataTypes struct {
	// Dialect names the owning dialect in error messages.
	Dialect string
}

func (p BaseDataTypes) BooleanType() string  { return "BOOLEAN" }
func (p BaseDataTypes) ByteType() string     { return "TINYINT" }
func (p BaseDataTypes) UByteType() string    { return "SMALLINT" }
func (p BaseDataTypes) ShortType() string    { return "SMALLINT" }
func (p BaseDataTypes) UShortType() string   { return "INT" }
func (p BaseDataTypes) IntegerType() string  { return "INT" }
func (p BaseDataTypes) UIntegerType() string { return "BIGINT" }
func (p BaseDataTypes) LongType() string     { return "BIGINT" }
func (p BaseDataTypes) ULongType() string    { return "NUMERIC(20)" }
func (p BaseDataTypes) FloatType() string    { return "FLOAT" }
func (p BaseDataTypes) DoubleType() string   { return "DOUBLE PRECISION" }
func (p BaseDataTypes) TextType() string     { return "TEXT" }
func (p BaseDataTypes) BlobType() string     { return "BLOB" }
func (p BaseDataTypes) UUIDType() string     { return "BINARY(16)" }
func (p BaseDataTypes) DateType() string     { return "DATE" }
func (p BaseDataTypes) TimeType() string     { return "TIME" }
func (p BaseDataTypes) DateTimeType() string { return "DATETIME" }

func (p BaseDataTypes) IntegerAutoincType() string { return "INT AUTO_INCREMENT" }
func (p BaseDataTypes) LongAutoincType() string    { return "BIGINT AUTO_INCREMENT" }

// DecimalType renders DECIMAL(precision, scale).
func (p BaseDataTypes) DecimalType(precision, scale int) (string, error) {
	if precision <= 0 || scale < 0 || scale > precision {
		return "", Misconfigured(p.Dialect, "decimal column",
			fmt.Sprintf("invalid precision %d and scale %d", precision, scale))
	}
	return fmt.Sprintf("DECIMAL(%d, %d)", precision, scale), nil
}

// CharType renders CHAR(length).
func (p BaseDataTypes) CharType(length int) (string, error) {
	if err := p.RequireLength("char", length); err != nil {
		return "", err
	}
	return fmt.Sprintf("CHAR(%d)", length), nil
}

// VarcharType renders VARCHAR(length).
func (p BaseDataTypes) VarcharType(length int) (string, error) {
	if err := p.RequireLength("varchar", length); err != nil {
		return "", err
	}
	return fmt.Sprintf("VARCHAR(%d)", length), nil
}

// BinaryType renders VARBINARY(length), or BLOB when no length is given.
func (p BaseDataTypes) BinaryType(length int) (string, error) {
	if length < 0 {
		return "", Misconfigured(p.Dialect, "binary column", fmt.Sprintf("negative length %d", length))
	}
	if length == 0 {
		return "BLOB", nil
	}
	return fmt.Sprintf("VARBINARY(%d)", length), nil
}

// Widens reports the substitutions made by the defaults above.
func (p BaseDataTypes) Widens(kind schema.ColumnKind) bool {
	switch kind {
	case schema.KindUByte, schema.KindUShort, schema.KindUInt:
		return true
	}
	return false
}

// RequireLength returns a ConfigurationError unless length is positive.
func (p BaseDataTypes) RequireLength(what string, length int) error {
	if length > 0 {
		return nil
	}
	if length == 0 {
		return Misconfigured(p.Dialect, what+" column", "a length is required")
	}
	return Misconfigured(p.Dialect, what+" column", fmt.Sprintf("negative length %d", length))
}

// ColumnTypeSQL dispatches t to the matching method of p.
func ColumnTypeSQL(p DataTypeProvider, t schema.ColumnType) (string, error) {
	switch t.Kind {
	case schema.KindBool:
		return p.BooleanType(), nil
	case schema.KindByte:
		return p.ByteType(), nil
	case schema.KindUByte:
		return p.UByteType(), nil
	case schema.KindShort:
		return p.ShortType(), nil
	case schema.KindUShort:
		return p.UShortType(), nil
	case schema.KindInt:
		return p.IntegerType(), nil
	case schema.KindUInt:
		return p.UIntegerType(), nil
	case schema.KindLong:
		return p.LongType(), nil
	case schema.KindULong:
		return p.ULongType(), nil
	case schema.KindFloat:
		return p.FloatType(), nil
	case schema.KindDouble:
		return p.DoubleType(), nil
	case schema.KindDecimal:
		return p.DecimalType(t.Precision, t.Scale)
	case schema.KindChar:
		return p.CharType(t.Length)
	case schema.KindVarchar:
		return p.VarcharType(t.Length)
	case schema.KindText:
		return p.TextType(), nil
	case schema.KindBinary:
		return p.BinaryType(t.Length)
	case schema.KindBlob:
		return p.BlobType(), nil
	case schema.KindUUID:
		return p.UUIDType(), nil
	case schema.KindDate:
		return p.DateType(), nil
	case schema.KindTime:
		return p.TimeType(), nil
	case schema.KindDateTime:
		return p.DateTimeType(), nil
	case schema.KindIntAutoinc:
		return p.IntegerAutoincType(), nil
	case schema.KindLongAutoinc:
		return p.LongAutoincType(), nil
	default:
		return "", fmt.Errorf("%w: unknown column kind %s", ErrConfiguration, t.Kind)
	}
}
