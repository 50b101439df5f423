package presenter

import (
	"embed"
	"io/fs"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var schemaFiles embed.FS

type schemaIndex struct {
	byName map[string]*EntitySchema // "banner"
	byType map[string]*EntitySchema // "Banner"
}

// Schemas load once per process; a malformed file drops that schema and the
// affected resource renders generically.
var loadIndex = sync.OnceValue(func() schemaIndex {
	idx := schemaIndex{
		byName: map[string]*EntitySchema{},
		byType: map[string]*EntitySchema{},
	}
	paths, _ := fs.Glob(schemaFiles, "schemas/*.yaml")
	for _, path := range paths {
		data, err := schemaFiles.ReadFile(path)
		if err != nil {
			continue
		}
		var schema EntitySchema
		if yaml.Unmarshal(data, &schema) != nil || schema.Entity == "" {
			continue
		}
		idx.byName[schema.Entity] = &schema
		if schema.TypeKey != "" {
			idx.byType[schema.TypeKey] = &schema
		}
	}
	return idx
})

// LookupByName returns the schema for a resource name like "banner".
func LookupByName(name string) *EntitySchema {
	return loadIndex().byName[name]
}

// LookupByTypeKey returns the schema for an API type key like "Banner".
func LookupByTypeKey(typeKey string) *EntitySchema {
	return loadIndex().byType[typeKey]
}

// Detect resolves a schema for response data: an explicit resource hint wins,
// then the payload's own "type" field (first element for arrays).
func Detect(data any, entityHint string) *EntitySchema {
	if entityHint != "" {
		if s := LookupByName(entityHint); s != nil {
			return s
		}
	}

	row, ok := data.(map[string]any)
	if !ok {
		arr, isArr := data.([]any)
		if !isArr || len(arr) == 0 {
			return nil
		}
		if row, ok = arr[0].(map[string]any); !ok {
			return nil
		}
	}
	if typeKey, ok := row["type"].(string); ok {
		return LookupByTypeKey(typeKey)
	}
	return nil
}
