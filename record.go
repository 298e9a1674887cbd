package canopy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EntityRecord is the serializable form of an entity and its subtree.
// InitialSize is omitted when it equals Size; a zero value restores as Size.
type EntityRecord struct {
	Type        string         `json:"type" yaml:"type"`
	ID          string         `json:"id" yaml:"id"`
	Position    Vec2           `json:"position" yaml:"position"`
	Size        Vec2           `json:"size" yaml:"size"`
	InitialSize Vec2           `json:"initial_size,omitempty" yaml:"initial_size,omitempty"`
	Rotation    float64        `json:"rotation" yaml:"rotation"`
	Layer       int            `json:"layer" yaml:"layer"`
	Static      bool           `json:"static,omitempty" yaml:"static,omitempty"`
	Children    []EntityRecord `json:"children,omitempty" yaml:"children,omitempty"`
}

// DrawableFactory rebuilds the drawable for a record. Returning nil makes
// the entity a group.
type DrawableFactory func(rec EntityRecord) (Drawable, error)

// Record returns the entity and its subtree as a record. Children appear
// in insertion order.
func (e *Entity) Record() EntityRecord {
	rec := EntityRecord{
		Type:     e.kind.String(),
		ID:       e.id,
		Position: e.position,
		Size:     e.size,
		Rotation: e.rotation,
		Layer:    e.layer,
		Static:   e.static,
	}
	if e.initialSize != e.size {
		rec.InitialSize = e.initialSize
	}
	for _, c := range e.Children() {
		rec.Children = append(rec.Children, c.Record())
	}
	return rec
}

// Snapshot returns a record for every root, in layer order.
func (s *Scene) Snapshot() []EntityRecord {
	roots := s.orderedRoots()
	out := make([]EntityRecord, 0, len(roots))
	for _, r := range roots {
		out = append(out, r.Record())
	}
	return out
}

// Restore creates entities from records as new roots of the scene. factory
// may be nil, in which case every entity is a group. On error the entities
// created so far are kept.
func (s *Scene) Restore(records []EntityRecord, factory DrawableFactory) error {
	for _, rec := range records {
		if _, err := s.restore(rec, nil, factory); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) restore(rec EntityRecord, parent *Entity, factory DrawableFactory) (*Entity, error) {
	var d Drawable
	if factory != nil {
		var err error
		if d, err = factory(rec); err != nil {
			return nil, fmt.Errorf("restore %q: %w", rec.ID, err)
		}
	}
	initial := rec.InitialSize
	if initial == (Vec2{}) {
		initial = rec.Size
	}
	e, err := s.NewEntity(rec.ID, Geometry{
		Position: rec.Position,
		Size:     initial,
		Rotation: rec.Rotation,
		Layer:    rec.Layer,
		Static:   rec.Static,
		Drawable: d,
	})
	if err != nil {
		return nil, fmt.Errorf("restore %q: %w", rec.ID, err)
	}
	e.SetSize(rec.Size)
	if parent != nil {
		if err := parent.AddChild(e); err != nil {
			return nil, fmt.Errorf("restore %q: %w", rec.ID, err)
		}
	}
	for _, child := range rec.Children {
		if _, err := s.restore(child, e, factory); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// EncodeRecordsYAML marshals records as a YAML sequence.
func EncodeRecordsYAML(records []EntityRecord) ([]byte, error) {
	return yaml.Marshal(records)
}

// DecodeRecordsYAML parses a YAML sequence of records.
func DecodeRecordsYAML(data []byte) ([]EntityRecord, error) {
	var out []EntityRecord
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}
