// This package has the delta model: a typed tree describing the difference between two schema versions.
// Never deal with DDL construction.
package delta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/go-cmp/cmp"
)

type Model struct {
	Containers Bucket[Container]
	Entities   Bucket[Table]
	Views      Bucket[View]
}

// Bucket classifies the items of one level of the delta tree. Absent buckets are empty slices.
type Bucket[T any] struct {
	Added    []Item[T]
	Deleted  []Item[T]
	Modified []Item[T]
}

func (b Bucket[T]) Len() int {
	return len(b.Added) + len(b.Deleted) + len(b.Modified)
}

// Item is one `{name: descriptor}` entry of a bucket, unwrapped at parse time.
type Item[T any] struct {
	Name       string
	Descriptor T
	Transition Transition
}

type Transition int

const (
	Unchanged Transition = iota
	Created
	Deleted
	Modified
)

func (t Transition) String() string {
	switch t {
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	default:
		return "unchanged"
	}
}

// Flags are the compMod markers recording which transition produced a node.
type Flags struct {
	Created  bool `json:"created,omitempty"`
	Deleted  bool `json:"deleted,omitempty"`
	Modified bool `json:"modified,omitempty"`
}

// Transition resolves the flags with precedence created > deleted > modified.
func (f Flags) Transition() Transition {
	switch {
	case f.Created:
		return Created
	case f.Deleted:
		return Deleted
	case f.Modified:
		return Modified
	default:
		return Unchanged
	}
}

// Activation is the soft-enable flag shared by most descriptors. An absent flag means activated.
type Activation struct {
	IsActivated *bool `json:"isActivated,omitempty"`
}

func (a Activation) Activated() bool {
	return a.IsActivated == nil || *a.IsActivated
}

func Active(activated bool) Activation {
	return Activation{IsActivated: &activated}
}

// Change is an old/new pair from a compMod block.
type Change[T any] struct {
	Old T `json:"old"`
	New T `json:"new"`
}

// Changed is false for a nil change.
func (c *Change[T]) Changed(opts ...cmp.Option) bool {
	if c == nil {
		return false
	}
	return !cmp.Equal(c.Old, c.New, opts...)
}

// Text holds a scalar that hosts emit either as a JSON string or as a bare number or boolean.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("expected a scalar but got %s", data)
	default:
		*t = Text(data)
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

type Container struct {
	Name string `json:"-"`
	Activation
	IfNotExist   bool            `json:"ifNotExist,omitempty"`
	CharacterSet string          `json:"characterSet,omitempty"`
	Collation    string          `json:"collation,omitempty"`
	Comment      string          `json:"comment,omitempty"`
	CompMod      ContainerChange `json:"compMod"`
}

type ContainerChange struct {
	Flags
	Name         *Change[string] `json:"name,omitempty"`
	CharacterSet *Change[string] `json:"characterSet,omitempty"`
	Collation    *Change[string] `json:"collation,omitempty"`
	Comment      *Change[string] `json:"comment,omitempty"`
}

type Table struct {
	Name           string `json:"-"`
	CollectionName string `json:"collectionName,omitempty"`
	Code           string `json:"code,omitempty"`
	Activation
	Temporary        bool                  `json:"temporary,omitempty"`
	IfNotExist       bool                  `json:"ifNotExist,omitempty"`
	OrReplace        bool                  `json:"orReplace,omitempty"`
	Columns          Columns               `json:"properties"`
	Required         []string              `json:"required,omitempty"`
	Keys             List[Key]             `json:"keys,omitempty"`
	ForeignKeys      List[ForeignKey]      `json:"foreignKeys,omitempty"`
	CheckConstraints List[CheckConstraint] `json:"checkConstraints,omitempty"`
	Indexes          List[Index]           `json:"indexes,omitempty"`
	TableOptions     TableOptions          `json:"tableOptions"`
	CompMod          TableChange           `json:"compMod"`
}

// IsRequired reports whether the column is NOT NULL, either by its own flag or the table's list.
func (t Table) IsRequired(column ColumnDefinition) bool {
	if column.Required {
		return true
	}
	for _, name := range t.Required {
		if name == column.Name {
			return true
		}
	}
	return false
}

type TableChange struct {
	Flags
	KeyspaceName   string                `json:"keyspaceName,omitempty"`
	CollectionName *Change[string]       `json:"collectionName,omitempty"`
	TableOptions   *Change[TableOptions] `json:"tableOptions,omitempty"`
	Keys           *Change[List[Key]]    `json:"keys,omitempty"`
	Indexes        *Change[List[Index]]  `json:"indexes,omitempty"`
}

type TableOptions struct {
	Engine        string `json:"engine,omitempty"`
	CharacterSet  string `json:"characterSet,omitempty"`
	Collation     string `json:"collation,omitempty"`
	Comment       string `json:"comment,omitempty"`
	AutoIncrement Text   `json:"autoIncrement,omitempty"`
	RowFormat     string `json:"rowFormat,omitempty"`
}

type ColumnDefinition struct {
	Name          string `json:"name,omitempty"`
	Type          string `json:"type,omitempty"`
	Length        Text   `json:"length,omitempty"`
	Precision     Text   `json:"precision,omitempty"`
	Scale         Text   `json:"scale,omitempty"`
	Unsigned      bool   `json:"unsigned,omitempty"`
	Required      bool   `json:"required,omitempty"`
	Default       Text   `json:"default,omitempty"`
	AutoIncrement bool   `json:"autoIncrement,omitempty"`
	CharacterSet  string `json:"characterSet,omitempty"`
	Collation     string `json:"collation,omitempty"`
	Comment       string `json:"comment,omitempty"`
	Invisible     bool   `json:"invisible,omitempty"`
	Activation
}

type Column struct {
	ColumnDefinition
	CompMod *ColumnChange `json:"compMod,omitempty"`
}

type ColumnChange struct {
	OldField ColumnDefinition `json:"oldField"`
	NewField ColumnDefinition `json:"newField"`
}

// Columns keeps the document order of a `properties` object; each column takes its key as name.
// A column that does not decode is dropped with a warning.
type Columns []Column

func (c *Columns) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = nil
		return nil
	}
	if data[0] == '[' {
		var columns List[Column]
		if err := json.Unmarshal(data, &columns); err != nil {
			return err
		}
		*c = Columns(columns)
		return nil
	}

	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		slog.Warn("Skipping malformed columns", "error", err)
		*c = nil
		return nil
	}
	columns := make(Columns, 0, len(obj))
	for _, m := range obj {
		var column Column
		if err := json.Unmarshal(m.value, &column); err != nil {
			slog.Warn("Skipping malformed column", "column", m.key, "error", err)
			continue
		}
		if column.Name == "" {
			column.Name = m.key
		}
		columns = append(columns, column)
	}
	*c = columns
	return nil
}

// List decodes a JSON array element by element. Elements that do not decode are dropped with a
// warning, and so is a value that is not an array.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		slog.Warn("Skipping malformed list", "type", fmt.Sprintf("%T", *l), "error", err)
		*l = nil
		return nil
	}

	list := make(List[T], 0, len(raws))
	for i, raw := range raws {
		var element T
		if err := json.Unmarshal(raw, &element); err != nil {
			slog.Warn("Skipping malformed element", "type", fmt.Sprintf("%T", element), "index", i, "error", err)
			continue
		}
		list = append(list, element)
	}
	*l = list
	return nil
}

type KeyColumn struct {
	Name  string `json:"name"`
	Order Text   `json:"order,omitempty"`
	Activation
}

// Key is a primary or unique key constraint descriptor.
type Key struct {
	Name      string      `json:"name,omitempty"`
	KeyType   string      `json:"keyType"`
	Columns   []KeyColumn `json:"columns,omitempty"`
	Category  string      `json:"category,omitempty"`
	Ignore    bool        `json:"ignore,omitempty"`
	Comment   string      `json:"comment,omitempty"`
	BlockSize Text        `json:"blockSize,omitempty"`
	Activation
}

type Index struct {
	Name string `json:"name,omitempty"`
	// UNIQUE, FULLTEXT, SPATIAL or empty.
	IndexType string      `json:"indexType,omitempty"`
	Columns   []KeyColumn `json:"columns,omitempty"`
	Category  string      `json:"category,omitempty"`
	Ignore    bool        `json:"ignore,omitempty"`
	Comment   string      `json:"comment,omitempty"`
	BlockSize Text        `json:"blockSize,omitempty"`
	Activation
}

type ForeignKey struct {
	Name              string     `json:"name,omitempty"`
	Columns           ColumnRefs `json:"columns"`
	ReferencedTable   string     `json:"referencedTable"`
	ReferencedColumns ColumnRefs `json:"referencedColumns"`
	OnDelete          string     `json:"onDelete,omitempty"`
	OnUpdate          string     `json:"onUpdate,omitempty"`
	Activation
}

// ColumnRefs is either a list of key columns or a column list the host already rendered.
type ColumnRefs struct {
	Rendered   string
	IsRendered bool
	Columns    []KeyColumn
}

func (r *ColumnRefs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = ColumnRefs{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		r.IsRendered = true
		return json.Unmarshal(data, &r.Rendered)
	}
	return json.Unmarshal(data, &r.Columns)
}

func (r ColumnRefs) MarshalJSON() ([]byte, error) {
	if r.IsRendered {
		return json.Marshal(r.Rendered)
	}
	return json.Marshal(r.Columns)
}

// Activated is false when every referenced column is deactivated.
func (r ColumnRefs) Activated() bool {
	if r.IsRendered || len(r.Columns) == 0 {
		return true
	}
	for _, column := range r.Columns {
		if column.Activated() {
			return true
		}
	}
	return false
}

type CheckConstraint struct {
	Name       string `json:"name,omitempty"`
	Expression string `json:"expression"`
}

type View struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Activation
	OrReplace       bool       `json:"orReplace,omitempty"`
	IfNotExist      bool       `json:"ifNotExist,omitempty"`
	Algorithm       string     `json:"algorithm,omitempty"`
	SQLSecurity     string     `json:"sqlSecurity,omitempty"`
	CheckOption     string     `json:"checkOption,omitempty"`
	SelectStatement string     `json:"selectStatement,omitempty"`
	TableName       string     `json:"tableName,omitempty"`
	Keys            []ViewKey  `json:"keys,omitempty"`
	CompMod         ViewChange `json:"compMod"`
}

type ViewKey struct {
	Name      string `json:"name"`
	Alias     string `json:"alias,omitempty"`
	TableName string `json:"tableName,omitempty"`
	Activation
}

type ViewChange struct {
	Flags
	KeyspaceName    string          `json:"keyspaceName,omitempty"`
	Name            *Change[string] `json:"name,omitempty"`
	SelectStatement *Change[string] `json:"selectStatement,omitempty"`
	Algorithm       *Change[string] `json:"algorithm,omitempty"`
	SQLSecurity     *Change[string] `json:"sqlSecurity,omitempty"`
	CheckOption     *Change[string] `json:"checkOption,omitempty"`
}
