package expression

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dynaqlabs/dynaq/schema"
)

// Result is a compiled expression with its attribute name and value
// placeholder maps, ready to hand to the DynamoDB API.
type Result struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// Compiler turns parsed expressions into placeholdered expression
// strings. All expressions compiled through the same Compiler share one
// placeholder namespace, so a SET and a key condition built for the
// same request never collide.
type Compiler struct {
	ph *Placeholders
}

// NewCompiler creates a compiler with an empty placeholder registry.
func NewCompiler() *Compiler {
	return &Compiler{ph: NewPlaceholders()}
}

func (c *Compiler) result(expr string) Result {
	return Result{
		Expression: expr,
		Names:      c.ph.Names(),
		Values:     c.ph.Values(),
	}
}

// CompileSet compiles SET actions into an update expression.
func (c *Compiler) CompileSet(actions []SetAction) Result {
	parts := make([]string, 0, len(actions))

	for _, a := range actions {
		parts = append(parts, c.compilePath(a.Path)+" = "+c.compileRhs(a.Rhs))
	}

	return c.result("SET " + strings.Join(parts, ", "))
}

// CompileRemove compiles REMOVE paths into an update expression. Paths
// rooted at one of the protected attribute names, typically the table's
// key attributes, are rejected.
func (c *Compiler) CompileRemove(paths []*AttributePath, protected ...string) (Result, error) {
	parts := make([]string, 0, len(paths))

	for _, p := range paths {
		for _, name := range protected {
			if p.Root() == name {
				return Result{}, &SemanticError{Msg: "cannot remove key attribute " + name}
			}
		}

		parts = append(parts, c.compilePath(p))
	}

	return c.result("REMOVE " + strings.Join(parts, ", ")), nil
}

// CompileKeyCondition compiles a partition key equality, optionally
// combined with a sort key condition, into a key condition expression.
// The sort key condition must already be resolved against the key type.
func (c *Compiler) CompileKeyCondition(pk schema.Key, pkValue Value, sk *schema.Key, cond *SortKeyCondition) Result {
	expr := c.ph.Name(pk.Name) + " = " + c.ph.Value(pkValue)

	if sk != nil && cond != nil {
		expr += " AND " + c.compileSortKey(*sk, cond)
	}

	return c.result(expr)
}

func (c *Compiler) compileSortKey(sk schema.Key, cond *SortKeyCondition) string {
	name := c.ph.Name(sk.Name)

	switch cond.Op {
	case OpBetween:
		return name + " BETWEEN " + c.ph.Value(cond.Value) + " AND " + c.ph.Value(cond.Upper)
	case OpBeginsWith:
		return "begins_with(" + name + ", " + c.ph.Value(cond.Value) + ")"
	}

	return name + " " + cond.Op.String() + " " + c.ph.Value(cond.Value)
}

func (c *Compiler) compilePath(p *AttributePath) string {
	var b strings.Builder

	for i, e := range p.Elements {
		if e.IsIdx {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteString("]")

			continue
		}

		if i > 0 {
			b.WriteString(".")
		}

		b.WriteString(c.ph.Name(e.Name))
	}

	return b.String()
}

func (c *Compiler) compileRhs(r *Rhs) string {
	switch r.Kind {
	case RhsLiteral:
		return c.ph.Value(r.Literal)
	case RhsPath:
		return c.compilePath(r.Path)
	case RhsPlus:
		return c.compileRhs(r.Left) + " + " + c.compileRhs(r.Right)
	case RhsMinus:
		return c.compileRhs(r.Left) + " - " + c.compileRhs(r.Right)
	case RhsListAppend:
		return "list_append(" + c.compileRhs(r.Left) + ", " + c.compileRhs(r.Right) + ")"
	case RhsIfNotExists:
		return "if_not_exists(" + c.compilePath(r.Left.Path) + ", " + c.compileRhs(r.Right) + ")"
	}

	return ""
}
