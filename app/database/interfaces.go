package database

type VoteStore interface {
	RecordVote(eventID, voterID, ipAddress string, action VoteAction) (bool, error)
	GetAllLikes() (map[string]int, error)
	GetLikes(eventID string) (int, error)
}
