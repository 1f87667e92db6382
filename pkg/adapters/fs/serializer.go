package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jot/pkg/core"
)

// Format names accepted by SerializerFor.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Serializer defines how to read and write one note file format.
type Serializer interface {
	// Ext is the file extension, including the dot.
	Ext() string
	// Parse reads a note from r.
	Parse(r io.Reader) (*core.Note, error)
	// Serialize converts the note to bytes.
	Serialize(n core.Note) ([]byte, error)
}

// SerializerFor returns the serializer registered for format.
func SerializerFor(format string) (Serializer, error) {
	switch format {
	case "", FormatJSON:
		return JSONSerializer{}, nil
	case FormatYAML, "yml":
		return YAMLSerializer{}, nil
	default:
		return nil, fmt.Errorf("unknown note format: %s", format)
	}
}

var errEmptyRecord = errors.New("empty record")

// --- JSON Serializer ---

// JSONSerializer writes notes as indented UTF-8 JSON objects.
type JSONSerializer struct{}

// Ext implements Serializer.
func (JSONSerializer) Ext() string { return ".json" }

func (JSONSerializer) Parse(r io.Reader) (*core.Note, error) {
	var n *core.Note
	dec := json.NewDecoder(r)
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// A record holds exactly one object.
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, errors.New("invalid json: extra data after note object")
	}
	if n == nil {
		return nil, errEmptyRecord
	}
	return n, nil
}

func (JSONSerializer) Serialize(n core.Note) ([]byte, error) {
	if n.Tags == nil {
		n.Tags = []string{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- YAML Serializer ---

// YAMLSerializer writes notes as YAML documents.
type YAMLSerializer struct{}

type yamlNote struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Content   string   `yaml:"content"`
	Tags      []string `yaml:"tags"`
	CreatedAt string   `yaml:"created_at"`
	UpdatedAt string   `yaml:"updated_at"`
}

// Ext implements Serializer.
func (YAMLSerializer) Ext() string { return ".yaml" }

func (YAMLSerializer) Parse(r io.Reader) (*core.Note, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload *yamlNote
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if payload == nil {
		return nil, errEmptyRecord
	}

	created, err := core.ParseTimestamp(payload.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := core.ParseTimestamp(payload.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &core.Note{
		ID:        payload.ID,
		Title:     payload.Title,
		Content:   payload.Content,
		Tags:      payload.Tags,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func (YAMLSerializer) Serialize(n core.Note) ([]byte, error) {
	payload := yamlNote{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt.String(),
		UpdatedAt: n.UpdatedAt.String(),
	}
	if payload.Tags == nil {
		payload.Tags = []string{}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
