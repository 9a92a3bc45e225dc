// Package models holds the validated record types flowing through the
// pipeline: topics, per-topic texts, batches, and questions.
package models

import "fmt"

// Topic is a named inclusive page range. Ranges are 1-indexed; a topic
// list should cover the document but gaps are tolerated.
type Topic struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// NewTopic validates the range invariants at construction time.
func NewTopic(name string, start, end int) (Topic, error) {
	if name == "" {
		return Topic{}, fmt.Errorf("topic name cannot be empty")
	}
	if start < 1 {
		return Topic{}, fmt.Errorf("topic %q: start page %d must be at least 1", name, start)
	}
	if end < start {
		return Topic{}, fmt.Errorf("topic %q: end page %d before start page %d", name, end, start)
	}
	return Topic{Name: name, Start: start, End: end}, nil
}

// Pages is the number of pages the topic spans.
func (t Topic) Pages() int { return t.End - t.Start + 1 }

// TopicMap is the output of topic identification, sorted by start page.
type TopicMap struct {
	Topics []Topic `json:"topics"`
}

// TopicText pairs a topic with the concatenated text of its pages.
// Derived, recomputed whenever topics change.
type TopicText struct {
	Topic
	Text string `json:"text"`
}

// Batch is an ordered group of topic texts whose combined token
// estimate fits a provider's effective budget.
type Batch []TopicText

// Question is one generated multiple-choice question. DomainID is an
// opaque external identifier attached after generation by resolving
// TopicName against a caller-supplied mapping.
type Question struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	SourceText         string   `json:"source_text"`
	TopicName          string   `json:"topic_name"`
	DomainID           string   `json:"domain_id,omitempty"`
}

// Validate enforces the question invariants: non-empty body, at least
// three options, and a correct answer index within range.
func (q Question) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question body cannot be empty")
	}
	if len(q.Options) < 3 {
		return fmt.Errorf("question %q: needs at least 3 options, got %d", q.Question, len(q.Options))
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("question %q: correct_answer_index %d out of range [0,%d)", q.Question, q.CorrectAnswerIndex, len(q.Options))
	}
	return nil
}
