package database

import "errors"

type VoteAction string

const (
	VoteAdd    VoteAction = "add"
	VoteRemove VoteAction = "remove"
)

var ErrUnknownVoteAction = errors.New("unknown vote action")

// ParseVoteAction accepts "add" and "remove"; an empty action means add.
func ParseVoteAction(s string) (VoteAction, error) {
	switch VoteAction(s) {
	case "", VoteAdd:
		return VoteAdd, nil
	case VoteRemove:
		return VoteRemove, nil
	default:
		return "", ErrUnknownVoteAction
	}
}
