package skills

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"github.com/pkg/errors"
)

// DefaultKitchenIngredients is what the kitchen holds unless configured
// otherwise.
var DefaultKitchenIngredients = []string{
	"500g plain flour",
	"200g caster sugar",
	"500g cocoa powder",
	"100g pasta",
	"2 cans of tomatoes",
	"A broccoli head",
	"1L maple syrup",
	"200g light brown sugar",
	"100g bicarbonate of soda",
	"1kg walnuts",
	"150ml vanilla extract",
	"500g coconut oil",
	"1kg oats",
	"1kg raisins",
	"500g dark chocolate",
	"150g almonds",
}

// KitchenSkill reports what is available in the kitchen.
type KitchenSkill struct {
	ingredients []string
}

// KitchenInput takes no arguments.
type KitchenInput struct{}

// NewKitchenSkill creates the skill reporting ingredients. A nil list means
// DefaultKitchenIngredients.
func NewKitchenSkill(ingredients []string) *KitchenSkill {
	if ingredients == nil {
		ingredients = DefaultKitchenIngredients
	}
	return &KitchenSkill{ingredients: append([]string{}, ingredients...)}
}

// Name returns the name of the skill
func (s *KitchenSkill) Name() string {
	return "find_ingredients_in_kitchen"
}

// Description returns the description of the skill
func (s *KitchenSkill) Description() string {
	return "Find the ingredients that are available in the kitchen."
}

// GenerateSchema generates the JSON schema for the skill's input parameters
func (s *KitchenSkill) GenerateSchema() *jsonschema.Schema {
	return GenerateSchema[KitchenInput]()
}

// TracingKVs returns tracing attributes.
func (s *KitchenSkill) TracingKVs(_ map[string]any) ([]attribute.KeyValue, error) {
	return []attribute.KeyValue{
		attribute.Int("ingredients", len(s.ingredients)),
	}, nil
}

// Execute returns the inventory as a JSON array.
func (s *KitchenSkill) Execute(_ context.Context, _ map[string]any) (string, error) {
	data, err := json.Marshal(s.ingredients)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode kitchen ingredients")
	}
	return string(data), nil
}
