package domain

// GraphSchema is a proposed graph structure for a dataset, produced by the AI
// chat flow and edited by the user before saving. It is not a SQL schema.
type GraphSchema struct {
	ID            string               `json:"id,omitempty"`
	Name          string               `json:"name,omitempty"`
	Description   string               `json:"description,omitempty"`
	Nodes         []SchemaNode         `json:"nodes"`
	Relationships []SchemaRelationship `json:"relationships"`
	Indexes       []SchemaIndex        `json:"indexes,omitempty"`
	CSVFilePath   string               `json:"csv_file_path,omitempty"`
	SourceID      string               `json:"source_id,omitempty"`
}

// SchemaNode maps a node label to its typed properties (name -> type).
type SchemaNode struct {
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// SchemaRelationship connects two node labels with a typed edge.
type SchemaRelationship struct {
	Type       string            `json:"type"`
	StartNode  string            `json:"start_node"`
	EndNode    string            `json:"end_node"`
	Properties map[string]string `json:"properties,omitempty"`
}

// SchemaIndex is an index suggestion emitted by the generator.
type SchemaIndex struct {
	Label      string   `json:"label"`
	Properties []string `json:"properties"`
	Type       string   `json:"type,omitempty"`
}

// ChatMessage is one turn in the schema-generation conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the backend's reply to a schema chat turn: free-form text
// plus, when the model produced one, a schema draft.
type ChatResponse struct {
	Message string       `json:"message"`
	Schema  *GraphSchema `json:"schema,omitempty"`
}
