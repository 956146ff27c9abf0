package domain

import "time"

// GroupBinding maps a stable key to the current LINE group id for that bot.
// The workflow service upserts it when the bot joins a group; the operator
// console reads it back. PK: group_key.
type GroupBinding struct {
	GroupKey  string    `json:"group_key" dynamodbav:"group_key"`
	GroupID   string    `json:"group_id" dynamodbav:"group_id"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// DefaultGroupKey is used when the webhook does not name a key; a single-bot
// deployment only ever has this one binding.
const DefaultGroupKey = "default"
