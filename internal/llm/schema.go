package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var compiled = struct {
	sync.Mutex
	byName map[string]*jsonschema.Schema
}{byName: make(map[string]*jsonschema.Schema)}

// Check parses raw and validates it against the schema. A nil schema
// accepts anything.
func (s *Schema) Check(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	sch, err := s.compile()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("not JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("does not match %s: %w", s.Name, err)
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	compiled.Lock()
	defer compiled.Unlock()
	if sch, ok := compiled.byName[s.Name]; ok {
		return sch, nil
	}

	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", s.Name, err)
	}

	loc := "mem://starpath/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(loc, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", s.Name, err)
	}
	sch, err := c.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}
	compiled.byName[s.Name] = sch
	return sch, nil
}
