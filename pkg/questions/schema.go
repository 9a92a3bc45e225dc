package questions

import "github.com/quizforge/quizforge/internal/types"

// generationSchema is the strict structured-output schema for question
// generation, used with providers that enforce JSON schemas.
func generationSchema() *types.Schema {
	return &types.Schema{
		Name:   "question_generation",
		Strict: true,
		Root: &types.SchemaProperty{
			Type: "object",
			Properties: map[string]*types.SchemaProperty{
				"questions": {
					Type: "array",
					Items: &types.SchemaProperty{
						Type: "object",
						Properties: map[string]*types.SchemaProperty{
							"topic_name":           {Type: "string"},
							"question":             {Type: "string"},
							"options":              {Type: "array", Items: &types.SchemaProperty{Type: "string"}},
							"correct_answer_index": {Type: "integer"},
							"source_text":          {Type: "string"},
						},
						Required: []string{"topic_name", "question", "options", "correct_answer_index", "source_text"},
					},
				},
			},
			Required: []string{"questions"},
		},
	}
}
