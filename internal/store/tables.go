package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// sequenceColumns holds the single-row counter behind sequence.
	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64},
	}
	sequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	llmEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "request_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_request_id", Columns: []*schema.Column{llmEventColumns[3]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{llmEventColumns[5]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventColumns[6]}},
		},
	}

	generationColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "request_id", Type: field.TypeString},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "kind", Type: field.TypeString},
		{Name: "grade", Type: field.TypeInt},
		{Name: "skill", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "material", Type: field.TypeString, Default: ""},
		{Name: "requested", Type: field.TypeInt},
		{Name: "returned", Type: field.TypeInt},
		{Name: "rounds", Type: field.TypeInt, Default: 0},
		{Name: "fallbacks", Type: field.TypeInt, Default: 0},
		{Name: "warning", Type: field.TypeString, Default: ""},
	}
	generationTable = &schema.Table{
		Name:       "generations",
		Columns:    generationColumns,
		PrimaryKey: []*schema.Column{generationColumns[0]},
	}

	questionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "position", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "type", Type: field.TypeString},
		{Name: "fingerprint", Type: field.TypeString},
		{Name: "stem", Type: field.TypeString},
		{Name: "payload", Type: field.TypeString, Size: 2147483647},
		{Name: "generation_id", Type: field.TypeInt64},
	}
	questionTable = &schema.Table{
		Name:       "generated_questions",
		Columns:    questionColumns,
		PrimaryKey: []*schema.Column{questionColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "generated_questions_generations_questions",
				Columns:    []*schema.Column{questionColumns[7]},
				RefColumns: []*schema.Column{generationColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "generatedquestion_generation_id", Columns: []*schema.Column{questionColumns[7]}},
			{Name: "generatedquestion_fingerprint", Columns: []*schema.Column{questionColumns[4]}},
		},
	}

	tables = []*schema.Table{
		sequenceTable,
		llmEventTable,
		generationTable,
		questionTable,
	}
)

func init() {
	questionTable.ForeignKeys[0].RefTable = generationTable
}
