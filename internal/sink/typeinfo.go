package sink

// ConfigField describes one configuration field for a sink type.
type ConfigField struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number", "bool"
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// TypeInfo describes a sink type and the configuration it expects.
// Returned by Factory.ConfigSpec() and exposed via GET /sinks/info and
// GET /sinks/types/:type.
type TypeInfo struct {
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Fields      []ConfigField `json:"fields"`
}
