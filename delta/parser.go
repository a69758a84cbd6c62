package delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// MalformedInputError is returned when a document holds no usable delta tree.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	msg := "comparison model not found: alter scripts can be generated only from a delta model"
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

var errNotAnObject = errors.New("delta document is not a JSON object")

var bucketNames = []string{"containers", "entities", "views"}
var transitionNames = []string{"added", "deleted", "modified"}

// Parse reads a delta document. Both the host layout, where every level is wrapped in
// `properties` and buckets hold `items`, and the compact layout without those wrappers are
// accepted. Malformed descriptors are skipped with a warning.
func Parse(document []byte) (*Model, error) {
	document = bytes.TrimSpace(document)
	if len(document) == 0 || string(document) == "null" {
		return nil, &MalformedInputError{}
	}
	if document[0] != '{' {
		return nil, &MalformedInputError{Err: errNotAnObject}
	}

	var root object
	if err := json.Unmarshal(document, &root); err != nil {
		return nil, &MalformedInputError{Err: err}
	}
	root = unwrapProperties(root, bucketNames)

	model := &Model{
		Containers: parseBucket(root, "containers", decodeContainer),
		Entities:   parseBucket(root, "entities", decodeTable),
		Views:      parseBucket(root, "views", decodeView),
	}
	slog.Debug("Parsed delta model",
		"containers", model.Containers.Len(),
		"entities", model.Entities.Len(),
		"views", model.Views.Len(),
	)
	return model, nil
}

type decoder[T any] func(name string, raw json.RawMessage) (T, Flags, error)

func parseBucket[T any](root object, bucketName string, decode decoder[T]) Bucket[T] {
	var bucket Bucket[T]
	var node object
	if raw, ok := root.get(bucketName); ok {
		if err := json.Unmarshal(raw, &node); err != nil {
			slog.Warn("Skipping malformed bucket", "bucket", bucketName, "error", err)
			node = nil
		}
		node = unwrapProperties(node, transitionNames)
	}

	bucket.Added = parseItems(node, bucketName, "added", decode)
	bucket.Deleted = parseItems(node, bucketName, "deleted", decode)
	bucket.Modified = parseItems(node, bucketName, "modified", decode)
	return bucket
}

func parseItems[T any](node object, bucketName string, transition string, decode decoder[T]) []Item[T] {
	items := []Item[T]{}
	raw, ok := node.get(transition)
	if !ok {
		return items
	}

	entries, err := splitItems(raw)
	if err != nil {
		slog.Warn("Skipping malformed items", "bucket", bucketName, "transition", transition, "error", err)
		return items
	}

	for _, entry := range entries {
		for _, m := range unwrapProperties(entry, nil) {
			descriptor, flags, err := decode(m.key, m.value)
			if err != nil {
				slog.Warn("Skipping malformed descriptor", "bucket", bucketName, "transition", transition, "name", m.key, "error", err)
				continue
			}
			items = append(items, Item[T]{
				Name:       m.key,
				Descriptor: descriptor,
				Transition: flags.Transition(),
			})
		}
	}
	return items
}

// splitItems accepts `{"items": [...]}`, `{"items": {...}}`, a bare array, or a single item object.
func splitItems(raw json.RawMessage) ([]object, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '{' {
		var obj object
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		inner, ok := obj.get("items")
		if !ok {
			return []object{obj}, nil
		}
		raw = bytes.TrimSpace(inner)
		if len(raw) == 0 || string(raw) == "null" {
			return nil, nil
		}
		if raw[0] == '{' {
			var single object
			if err := json.Unmarshal(raw, &single); err != nil {
				return nil, err
			}
			return []object{single}, nil
		}
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(raw, &rawEntries); err != nil {
		return nil, err
	}
	var entries []object
	for _, rawEntry := range rawEntries {
		rawEntry = bytes.TrimSpace(rawEntry)
		if string(rawEntry) == "null" {
			continue
		}
		var entry object
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// unwrapProperties descends into a `properties` member unless the object already has one of the
// expected keys at its own level.
func unwrapProperties(obj object, expected []string) object {
	for _, key := range expected {
		if _, ok := obj.get(key); ok {
			return obj
		}
	}
	raw, ok := obj.get("properties")
	if !ok {
		return obj
	}
	var inner object
	if err := json.Unmarshal(raw, &inner); err != nil {
		return obj
	}
	return inner
}

func decodeContainer(name string, raw json.RawMessage) (Container, Flags, error) {
	var container Container
	if err := decodeDescriptor(raw, &container); err != nil {
		return Container{}, Flags{}, err
	}
	container.Name = name
	return container, container.CompMod.Flags, nil
}

func decodeTable(name string, raw json.RawMessage) (Table, Flags, error) {
	var table Table
	if err := decodeDescriptor(raw, &table); err != nil {
		return Table{}, Flags{}, err
	}
	if len(table.Columns) == 0 {
		// Compact documents list columns under `columns`.
		var compact struct {
			Columns Columns `json:"columns"`
		}
		if err := decodeDescriptor(raw, &compact); err != nil {
			return Table{}, Flags{}, err
		}
		table.Columns = compact.Columns
	}
	switch {
	case table.CollectionName != "":
		table.Name = table.CollectionName
	case table.Code != "":
		table.Name = table.Code
	default:
		table.Name = name
	}
	return table, table.CompMod.Flags, nil
}

func decodeView(name string, raw json.RawMessage) (View, Flags, error) {
	view, err := ResolveView(raw)
	if err != nil {
		return View{}, Flags{}, err
	}
	if view.Code != "" {
		view.Name = view.Code
	}
	if view.Name == "" {
		view.Name = name
	}
	return view, view.CompMod.Flags, nil
}

// ResolveView overlays the top-level members of a view's `role` onto the view itself and decodes
// the result. The input document is left untouched.
func ResolveView(raw json.RawMessage) (View, error) {
	var members map[string]json.RawMessage
	if err := decodeDescriptor(raw, &members); err != nil {
		return View{}, err
	}

	merged := make(map[string]json.RawMessage, len(members))
	for key, value := range members {
		merged[key] = value
	}
	if role, ok := members["role"]; ok {
		var roleMembers map[string]json.RawMessage
		if err := json.Unmarshal(role, &roleMembers); err != nil {
			return View{}, fmt.Errorf("role: %w", err)
		}
		for key, value := range roleMembers {
			merged[key] = value
		}
	}

	buf, err := json.Marshal(merged)
	if err != nil {
		return View{}, err
	}
	var view View
	if err := json.Unmarshal(buf, &view); err != nil {
		return View{}, err
	}
	return view, nil
}

func decodeDescriptor(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] != '{' {
		return fmt.Errorf("descriptor is not an object: %s", raw)
	}
	return json.Unmarshal(raw, v)
}

type member struct {
	key   string
	value json.RawMessage
}

// object is a JSON object that remembers member order.
type object []member

func (o object) get(key string) (json.RawMessage, bool) {
	for _, m := range o {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

func (o *object) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*o = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	token, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object but got %s", bytes.TrimSpace(data))
	}

	result := object{}
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", token)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		result = append(result, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = result
	return nil
}
