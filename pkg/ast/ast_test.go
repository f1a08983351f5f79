package ast_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/walteh/feast/pkg/ast"
	"github.com/walteh/feast/pkg/lexer"
	"github.com/walteh/feast/pkg/parser"
	"github.com/walteh/feast/pkg/position"
)

func mustParse(t *testing.T, source string) *ast.Node {
	t.Helper()
	root, err := parser.Parse(context.Background(), source, parser.Options{})
	require.NoError(t, err)
	require.NoError(t, root.Err())
	return root
}

func at(index int) position.Position {
	return position.Position{Index: index, Line: 1, Column: index + 1}
}

func TestNodeTypeText(t *testing.T) {
	for _, typ := range []ast.NodeType{
		ast.NodeTemplate,
		ast.NodeTag,
		ast.NodeAttribute,
		ast.NodeAttributeName,
		ast.NodeAttributeValue,
		ast.NodeAttributeTemplateValue,
		ast.NodeExpression,
		ast.NodeError,
	} {
		text, err := typ.MarshalText()
		require.NoError(t, err)

		var got ast.NodeType
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, typ, got)
	}

	var bad ast.NodeType
	assert.Error(t, bad.UnmarshalText([]byte("feast::tag")))
	assert.Equal(t, "UNKNOWN", ast.NodeType(200).String())
}

func TestNodeJSONFieldNames(t *testing.T) {
	root := mustParse(t, "<a b/>")

	data, err := json.Marshal(root)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))

	assert.Equal(t, "TEMPLATE", generic["type"])
	assert.NotContains(t, generic, "value")
	assert.Equal(t, map[string]any{"index": float64(0), "line": float64(1), "column": float64(1)}, generic["start"])

	tag := generic["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "TAG", tag["type"])
	assert.Equal(t, "STRING", tag["value"].(map[string]any)["type"])
	assert.Equal(t, "a", tag["value"].(map[string]any)["value"])

	var back ast.Node
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *root, back)
}

func TestNodeYAML(t *testing.T) {
	root := mustParse(t, "<a b={c}/>")

	data, err := yaml.Marshal(root)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: ATTRIBUTE_TEMPLATE_VALUE")
	assert.Contains(t, string(data), "type: EXPRESSION")

	var back ast.Node
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, *root, back)
}

func TestNodeAccessors(t *testing.T) {
	root := mustParse(t, "<a b=c/>")
	tag := root.Children[0]

	assert.Equal(t, "a", tag.Name())
	assert.Equal(t, "", root.Name())
	assert.Equal(t, "", tag.Message())
	assert.Nil(t, tag.Err())

	attr := tag.Child(ast.NodeAttribute)
	require.NotNil(t, attr)
	assert.Equal(t, "b", attr.Child(ast.NodeAttributeName).Name())
	assert.Equal(t, "c", attr.Child(ast.NodeAttributeValue).Name())
	assert.Nil(t, attr.Child(ast.NodeExpression))

	assert.Equal(t, position.NewRange(at(0), at(8)), tag.Span())
	assert.Equal(t, `TAG("a")@1:1@0`, tag.String())
	assert.Equal(t, `TEMPLATE@1:1@0`, root.String())
}

func TestNewError(t *testing.T) {
	tok := lexer.Token{Type: lexer.TagClose, Start: at(3), End: at(4), Value: ">"}
	n := ast.NewError(tok, "boom")

	assert.Equal(t, ast.NodeError, n.Type)
	assert.Equal(t, at(3), n.Start)
	assert.Equal(t, at(4), n.End)
	assert.Equal(t, "boom", n.Message())
	assert.Equal(t, lexer.TagClose, n.Value.Type)

	var se *ast.SyntaxError
	require.ErrorAs(t, n.Err(), &se)
	assert.Equal(t, "1:4: boom", se.Error())
	assert.Equal(t, position.NewRange(at(3), at(4)), se.Range)
}

func TestWalkAndDump(t *testing.T) {
	root := mustParse(t, "<a b='x{y}'/>")

	var visited []string
	ast.Walk(root, func(n *ast.Node, depth int) bool {
		visited = append(visited, n.Type.String())
		return n.Type != ast.NodeAttributeTemplateValue
	})
	assert.Equal(t, []string{"TEMPLATE", "TAG", "ATTRIBUTE", "ATTRIBUTE_NAME", "ATTRIBUTE_TEMPLATE_VALUE"}, visited)

	var buf bytes.Buffer
	require.NoError(t, ast.Dump(&buf, root))
	assert.Equal(t, `TEMPLATE [1:1@0-1:14@13]
  TAG "a" [1:1@0-1:14@13]
    ATTRIBUTE [1:4@3-1:11@10]
      ATTRIBUTE_NAME "b" [1:4@3-1:5@4]
      ATTRIBUTE_TEMPLATE_VALUE [1:7@6-1:11@10]
        ATTRIBUTE_VALUE "x" [1:7@6-1:8@7]
        EXPRESSION "y" [1:9@8-1:10@9]
`, buf.String())
}

func TestValidate(t *testing.T) {
	t.Run("parsed trees are valid", func(t *testing.T) {
		for _, source := range []string{
			"",
			"<a/>",
			"<a b c=d e='f' g={h} i=\"j{k}l{m}n\"/>",
		} {
			assert.NoError(t, ast.Validate(mustParse(t, source)), source)
		}
	})

	t.Run("nil root", func(t *testing.T) {
		assert.ErrorIs(t, ast.Validate(nil), ast.ErrInvalidTree)
	})

	t.Run("wrong root", func(t *testing.T) {
		assert.ErrorIs(t, ast.Validate(&ast.Node{Type: ast.NodeTag}), ast.ErrInvalidTree)
	})

	t.Run("every violation is reported", func(t *testing.T) {
		name := &ast.Node{Type: ast.NodeAttributeName, Start: at(3), End: at(4), Value: &lexer.Token{Value: "b"}}
		root := &ast.Node{
			Type: ast.NodeTemplate, End: at(20),
			Children: []*ast.Node{
				{
					// tag without a name
					Type: ast.NodeTag, End: at(10),
					Children: []*ast.Node{
						// attribute with two names and an expression child
						{Type: ast.NodeAttribute, Start: at(3), End: at(6), Children: []*ast.Node{
							name,
							{Type: ast.NodeAttributeName, Start: at(4), End: at(5), Children: []*ast.Node{
								{Type: ast.NodeExpression, Start: at(4), End: at(5)},
							}},
							{Type: ast.NodeExpression, Start: at(5), End: at(6)},
						}},
						// attribute ending after its tag
						{Type: ast.NodeAttribute, Start: at(7), End: at(12), Children: []*ast.Node{
							{Type: ast.NodeAttributeName, Start: at(7), End: at(8)},
						}},
					},
				},
			},
		}

		err := ast.Validate(root)
		require.ErrorIs(t, err, ast.ErrInvalidTree)

		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		assert.Len(t, merr.Errors, 5)
		assert.Contains(t, err.Error(), "has no name")
		assert.Contains(t, err.Error(), "has 2 names")
		assert.Contains(t, err.Error(), "child 2 is EXPRESSION")
		assert.Contains(t, err.Error(), "ends at 12, after its parent")
		assert.Contains(t, err.Error(), "must not have children")
	})

	t.Run("overlapping siblings and adjacent literals", func(t *testing.T) {
		root := &ast.Node{
			Type: ast.NodeTemplate, End: at(10),
			Children: []*ast.Node{
				{Type: ast.NodeTag, Start: at(0), End: at(5), Value: &lexer.Token{Value: "a"}},
				{Type: ast.NodeTag, Start: at(4), End: at(10), Value: &lexer.Token{Value: "b"}, Children: []*ast.Node{
					{Type: ast.NodeAttribute, Start: at(6), End: at(9), Children: []*ast.Node{
						{Type: ast.NodeAttributeName, Start: at(6), End: at(7)},
						{Type: ast.NodeAttributeTemplateValue, Start: at(7), End: at(9), Children: []*ast.Node{
							{Type: ast.NodeAttributeValue, Start: at(7), End: at(8)},
							{Type: ast.NodeAttributeValue, Start: at(8), End: at(9)},
						}},
					}},
				}},
			},
		}

		err := ast.Validate(root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "child 1 starts at 4, before 5")
		assert.Contains(t, err.Error(), "adjacent literal segments at 1")
	})

	t.Run("adjacent expressions", func(t *testing.T) {
		root := &ast.Node{
			Type: ast.NodeTemplate, End: at(15),
			Children: []*ast.Node{
				{Type: ast.NodeTag, Start: at(0), End: at(15), Value: &lexer.Token{Value: "a"}, Children: []*ast.Node{
					{Type: ast.NodeAttribute, Start: at(3), End: at(12), Children: []*ast.Node{
						{Type: ast.NodeAttributeName, Start: at(3), End: at(4)},
						{Type: ast.NodeAttributeTemplateValue, Start: at(6), End: at(12), Children: []*ast.Node{
							{Type: ast.NodeExpression, Start: at(7), End: at(8)},
							{Type: ast.NodeExpression, Start: at(10), End: at(11)},
						}},
					}},
				}},
			},
		}

		err := ast.Validate(root)
		require.ErrorIs(t, err, ast.ErrInvalidTree)
		assert.Contains(t, err.Error(), "adjacent expressions at 1")

		assert.NoError(t, ast.Validate(mustParse(t, "<a b='{x}{y}'/>")))
		assert.NoError(t, ast.Validate(mustParse(t, `<a b="p{x}{y}q"/>`)))
	})
}

func TestIndex(t *testing.T) {
	source := "<a b='x{y}'/><c/>"
	root := mustParse(t, source)
	idx := ast.NewIndex(root)

	assert.Equal(t, 8, idx.Len())

	types := func(nodes []*ast.Node) []ast.NodeType {
		out := make([]ast.NodeType, len(nodes))
		for i, n := range nodes {
			out[i] = n.Type
		}
		return out
	}

	assert.Equal(t, []ast.NodeType{
		ast.NodeTemplate,
		ast.NodeTag,
		ast.NodeAttribute,
		ast.NodeAttributeTemplateValue,
		ast.NodeExpression,
	}, types(idx.At(8)))

	assert.Equal(t, []ast.NodeType{
		ast.NodeTemplate,
		ast.NodeTag,
		ast.NodeAttribute,
		ast.NodeAttributeName,
	}, types(idx.At(3)))

	assert.Equal(t, []ast.NodeType{ast.NodeTemplate, ast.NodeTag}, types(idx.At(14)))
	assert.Equal(t, "c", idx.Innermost(14).Name())
	assert.Equal(t, ast.NodeExpression, idx.Innermost(8).Type)
	assert.Empty(t, idx.At(len(source)))
	assert.Nil(t, idx.Innermost(100))
}
