package topics

import (
	"github.com/quizforge/quizforge/internal/models"
	"github.com/quizforge/quizforge/pkg/pageindex"
)

// ExtractTopicTexts resolves each topic's page range against the parsed
// page index. Topics whose range contains no page text are skipped;
// generation has nothing to work with there.
func ExtractTopicTexts(text string, topicMap models.TopicMap) []models.TopicText {
	pages := pageindex.Parse(text)

	texts := make([]models.TopicText, 0, len(topicMap.Topics))
	for _, topic := range topicMap.Topics {
		content := pageindex.ExtractRange(pages, topic.Start, topic.End)
		if content == "" {
			continue
		}
		texts = append(texts, models.TopicText{Topic: topic, Text: content})
	}
	return texts
}
