// Package fallback serves the example records shown when the backend is
// unreachable. Datasets are embedded YAML using the backend's field names.
package fallback

import (
	"embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"cooperativa/entities"
)

//go:embed data/*.yaml
var files embed.FS

// Load decodes data/<name>.yaml into out. YAML is first read generically and
// re-encoded as JSON so the entities' JSON decoders apply.
func Load(name string, out any) error {
	raw, err := files.ReadFile("data/" + name + ".yaml")
	if err != nil {
		return fmt.Errorf("fallback %s: %w", name, err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("fallback %s: %w", name, err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("fallback %s: %w", name, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("fallback %s: %w", name, err)
	}
	return nil
}

// mustLoad is for the embedded datasets, which are covered by tests.
func mustLoad[T any](name string) T {
	var v T
	if err := Load(name, &v); err != nil {
		panic(err)
	}
	return v
}

func Labors() []entities.Labor { return mustLoad[[]entities.Labor]("labores") }

func PaymentMethods() []entities.PaymentMethod {
	return mustLoad[[]entities.PaymentMethod]("metodos_pago")
}

func HarvestedProducts() []entities.HarvestedProduct {
	return mustLoad[[]entities.HarvestedProduct]("productos")
}

func ExampleLookups() entities.Lookups { return mustLoad[entities.Lookups]("lookups") }

// Labor returns the example detail record carrying the requested id.
func Labor(id int64) entities.Labor {
	l := Labors()[0]
	l.ID = id
	return l
}

func PaymentMethod(id int64) entities.PaymentMethod {
	m := mustLoad[entities.PaymentMethod]("metodo_pago_detalle")
	m.ID = id
	return m
}

func HarvestedProduct(id int64) entities.HarvestedProduct {
	p := HarvestedProducts()[0]
	p.ID = id
	return p
}
