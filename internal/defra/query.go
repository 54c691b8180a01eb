package defra

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/atelier-guides/maquette/internal/types"
)

// idPattern matches document and collection identifiers that are safe to
// interpolate into query text.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxIDLength = 500

// ValidateID rejects identifiers that could break out of a GraphQL literal.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty identifier", types.ErrInvalidID)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: identifier exceeds %d characters", types.ErrInvalidID, maxIDLength)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q contains unsupported characters", types.ErrInvalidID, id)
	}
	return nil
}

// QueryBuilder assembles parameterized DefraDB queries. Filters become
// GraphQL variables so values never land in the query text.
type QueryBuilder struct {
	collection string
	fields     []string
	filters    map[string]any
	inFilters  map[string][]string
	orderBy    string
	orderDir   string
	limit      int
	err        error
}

// NewQuery starts a query against a collection.
func NewQuery(collection string) *QueryBuilder {
	qb := &QueryBuilder{
		collection: collection,
		filters:    map[string]any{},
		inFilters:  map[string][]string{},
	}
	if err := ValidateID(collection); err != nil {
		qb.err = fmt.Errorf("collection: %w", err)
	}
	return qb
}

// Fields sets the fields to select. _docID is always included.
func (qb *QueryBuilder) Fields(fields ...string) *QueryBuilder {
	qb.fields = fields
	return qb
}

// Filter adds an equality filter on a field.
func (qb *QueryBuilder) Filter(field string, value any) *QueryBuilder {
	if qb.err == nil {
		if err := ValidateID(field); err != nil {
			qb.err = fmt.Errorf("filter field: %w", err)
			return qb
		}
	}
	qb.filters[field] = value
	return qb
}

// FilterIn adds a membership filter on a field.
func (qb *QueryBuilder) FilterIn(field string, values []string) *QueryBuilder {
	if qb.err == nil {
		if err := ValidateID(field); err != nil {
			qb.err = fmt.Errorf("filter field: %w", err)
			return qb
		}
	}
	qb.inFilters[field] = values
	return qb
}

// OrderBy sets the sort field and direction (ASC or DESC).
func (qb *QueryBuilder) OrderBy(field, direction string) *QueryBuilder {
	if qb.err == nil {
		if err := ValidateID(field); err != nil {
			qb.err = fmt.Errorf("order field: %w", err)
			return qb
		}
	}
	direction = strings.ToUpper(direction)
	if direction != "ASC" && direction != "DESC" {
		direction = "ASC"
	}
	qb.orderBy = field
	qb.orderDir = direction
	return qb
}

// Limit caps the number of returned documents.
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.limit = n
	return qb
}

// Build produces the query text and its variables.
func (qb *QueryBuilder) Build() (string, map[string]any, error) {
	if qb.err != nil {
		return "", nil, qb.err
	}

	var varDefs, filterParts []string
	variables := map[string]any{}

	for _, field := range sortedFilterKeys(qb.filters) {
		value := qb.filters[field]
		varName := "f_" + field
		varDefs = append(varDefs, fmt.Sprintf("$%s: %s", varName, inferGraphQLType(value)))
		filterParts = append(filterParts, fmt.Sprintf("%s: {_eq: $%s}", field, varName))
		variables[varName] = value
	}
	for _, field := range sortedInKeys(qb.inFilters) {
		varName := "in_" + field
		varDefs = append(varDefs, fmt.Sprintf("$%s: [String!]", varName))
		filterParts = append(filterParts, fmt.Sprintf("%s: {_in: $%s}", field, varName))
		variables[varName] = qb.inFilters[field]
	}

	var args []string
	if len(filterParts) > 0 {
		args = append(args, fmt.Sprintf("filter: {%s}", strings.Join(filterParts, ", ")))
	}
	if qb.orderBy != "" {
		args = append(args, fmt.Sprintf("order: {%s: %s}", qb.orderBy, qb.orderDir))
	}
	if qb.limit > 0 {
		args = append(args, fmt.Sprintf("limit: %d", qb.limit))
	}

	fields := qb.fields
	if len(fields) == 0 {
		fields = []string{"_docID"}
	} else if !contains(fields, "_docID") {
		fields = append([]string{"_docID"}, fields...)
	}

	var b strings.Builder
	b.WriteString("query")
	if len(varDefs) > 0 {
		b.WriteString("(" + strings.Join(varDefs, ", ") + ")")
	}
	b.WriteString(" { " + qb.collection)
	if len(args) > 0 {
		b.WriteString("(" + strings.Join(args, ", ") + ")")
	}
	b.WriteString(" { " + strings.Join(fields, " ") + " } }")

	return b.String(), variables, nil
}

// Execute builds and runs the query, returning the matched documents.
func (qb *QueryBuilder) Execute(ctx context.Context, client *Client) ([]map[string]any, error) {
	query, variables, err := qb.Build()
	if err != nil {
		return nil, err
	}
	resp, err := client.Execute(ctx, query, variables)
	if err != nil {
		return nil, err
	}
	if errMsg := resp.Error(); errMsg != "" {
		return nil, fmt.Errorf("query %s: %s", qb.collection, errMsg)
	}
	return resp.Docs(qb.collection), nil
}

// inferGraphQLType maps a Go value to the GraphQL type of its variable.
func inferGraphQLType(value any) string {
	switch value.(type) {
	case bool:
		return "Boolean"
	case int, int32, int64:
		return "Int"
	case float32, float64:
		return "Float"
	default:
		return "String"
	}
}

func sortedFilterKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedInKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
