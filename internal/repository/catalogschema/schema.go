// Package catalogschema generates a JSON Schema document for the on-disk
// relic catalog format, using reflection over the wire-shaped struct rather
// than hand-maintained JSON.
package catalogschema

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// RelicDocument mirrors relic.Relic's JSON shape with jsonschema tags, since
// relic.Relic itself carries no schema annotations (the domain package stays
// free of presentation/tooling concerns).
type RelicDocument struct {
	ID                   string          `json:"id" jsonschema:"title=Relic ID,pattern=^[a-z0-9-]+$,minLength=1,required"`
	Name                 string          `json:"name" jsonschema:"title=Display Name,minLength=1,required"`
	Description          string          `json:"description,omitempty"`
	Category             string          `json:"category" jsonschema:"enum=Attack,enum=Defense,enum=Utility,enum=Critical,enum=Elemental,required"`
	Rarity               string          `json:"rarity" jsonschema:"enum=common,enum=rare,enum=epic,enum=legendary,required"`
	Quality              string          `json:"quality,omitempty" jsonschema:"enum=Delicate,enum=Polished,enum=Grand"`
	IconURL              string          `json:"icon_url,omitempty"`
	ObtainmentDifficulty int             `json:"obtainment_difficulty" jsonschema:"minimum=1,maximum=10"`
	Conflicts            []string        `json:"conflicts,omitempty"`
	Active               bool            `json:"active"`
	Effects              []EffectDocument `json:"effects" jsonschema:"required"`
}

// EffectDocument mirrors relic.Effect's JSON shape.
type EffectDocument struct {
	ID           string          `json:"id" jsonschema:"minLength=1,required"`
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	EffectType   string          `json:"effect_type" jsonschema:"required"`
	Value        float64         `json:"value"`
	StackingRule string          `json:"stacking_rule" jsonschema:"enum=additive,enum=multiplicative,enum=overwrite,enum=unique,required"`
	Priority     int             `json:"priority"`
	DamageTypes  []string        `json:"damage_types,omitempty"`
	Conditions   []ConditionDocument `json:"conditions,omitempty"`
	Active       bool            `json:"active"`
}

// ConditionDocument mirrors relic.Condition's wire shape. Value is left
// untyped since its interpretation depends on Type.
type ConditionDocument struct {
	Type        string `json:"type" jsonschema:"required"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

// Catalog represents the contents of a relic catalog seed file in its JSON
// array form. The loader in repository.CatalogRepository also accepts an
// object keyed by relic id; this schema does not describe that form.
type Catalog []RelicDocument

// Build reflects over Catalog and returns the root JSON Schema document.
func Build() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Catalog{}))
	schema.Title = "Relic Catalog"
	schema.Description = "Designer-authored relics and effects consumed by the composition engine."
	return schema
}
