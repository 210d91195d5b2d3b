// Package schema checks task payloads and persisted documents against the
// task shape. Only the shape is checked: id/title/detail are strings and
// status is one of todo, doing, done. Uniqueness and emptiness are not.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/BuzzLyutic/task-board/internal/model"
)

// ErrMalformed is returned when the input is not JSON at all.
var ErrMalformed = errors.New("malformed json")

const taskDef = `{
	"type": "object",
	"required": ["id", "title", "detail", "status"],
	"properties": {
		"id":     {"type": "string"},
		"title":  {"type": "string"},
		"detail": {"type": "string"},
		"status": {"enum": ["todo", "doing", "done"]}
	}
}`

const requestSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"$defs": {"task": ` + taskDef + `},
	"type": "object",
	"required": ["tasks"],
	"properties": {
		"tasks": {"type": "array", "items": {"$ref": "#/$defs/task"}}
	}
}`

const documentSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"$defs": {"task": ` + taskDef + `},
	"type": "array",
	"items": {"$ref": "#/$defs/task"}
}`

var (
	request  = mustCompile("mem://board/request.json", requestSchema)
	document = mustCompile("mem://board/document.json", documentSchema)
)

func mustCompile(url, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("schema: add %s: %v", url, err))
	}
	return compiler.MustCompile(url)
}

// Error lists every shape violation found in one payload.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return strings.Join(e.Problems, "; ")
}

// ValidateRequest checks a `{ "tasks": [...] }` body and decodes the accepted list.
func ValidateRequest(raw []byte) ([]model.Task, error) {
	if err := validate(request, raw); err != nil {
		return nil, err
	}

	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	return doc.Tasks, nil
}

// ValidateDocument checks a persisted task array and decodes it.
func ValidateDocument(raw []byte) ([]model.Task, error) {
	if err := validate(document, raw); err != nil {
		return nil, err
	}

	tasks := []model.Task{}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return tasks, nil
}

func validate(s *jsonschema.Schema, raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty input", ErrMalformed)
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	if err := s.Validate(v); err != nil {
		result := &Error{}
		collect(result, err)
		return result
	}
	return nil
}

func collect(result *Error, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Problems = append(result.Problems, err.Error())
		return
	}
	collectCauses(result, ve)
}

func collectCauses(result *Error, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		path := pointerToPath(ve.InstanceLocation)
		if path == "" {
			path = "body"
		}
		result.Problems = append(result.Problems, fmt.Sprintf("%s: %s", path, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectCauses(result, cause)
	}
}

// pointerToPath turns "/tasks/0/status" into "tasks[0].status".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
