package authoring

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// FileFormat is the version written by Export. Import accepts any file
// with the same major version.
const FileFormat = "v1.0.0"

const fileSchemaURL = "mem://skilltrack/coursefile.schema.json"

var ErrUnsupportedFormat = errors.New("unsupported course file format")

//go:embed coursefile.schema.json
var fileSchemaJSON []byte

//go:embed demo.json
var demoJSON []byte

type courseFile struct {
	Format  string  `json:"format"`
	Courses []Draft `json:"courses"`
}

var fileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(fileSchemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(fileSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(fileSchemaURL)
})

// Import reads a course file, checks it against the file schema and the
// format version, assigns missing ids and validates every course.
func Import(r io.Reader) ([]*Draft, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse course file: %w", err)
	}
	schema, err := fileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile course file schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("course file does not match schema: %w", err)
	}

	var f courseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode course file: %w", err)
	}
	if !semver.IsValid(f.Format) || semver.Major(f.Format) != semver.Major(FileFormat) {
		return nil, fmt.Errorf("%w: %q (supported: %s.x)", ErrUnsupportedFormat, f.Format, semver.Major(FileFormat))
	}

	drafts := make([]*Draft, len(f.Courses))
	for i := range f.Courses {
		d := &f.Courses[i]
		d.fillIDs()
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("course %d (%s): %w", i+1, d.Name, err)
		}
		drafts[i] = d
	}
	return drafts, nil
}

// Export writes drafts as an indented course file.
func Export(w io.Writer, drafts ...*Draft) error {
	f := courseFile{Format: FileFormat, Courses: make([]Draft, len(drafts))}
	for i, d := range drafts {
		f.Courses[i] = *d
		if f.Courses[i].Items == nil {
			f.Courses[i].Items = []ItemDraft{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("write course file: %w", err)
	}
	return nil
}

// DemoCatalog returns the bundled sample courses.
func DemoCatalog() ([]*Draft, error) {
	return Import(bytes.NewReader(demoJSON))
}
