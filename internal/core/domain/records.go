package domain

import (
	"encoding/json"
	"time"
)

// Record shapes of the marketplace collections. Column names match the
// canonical schema in the postgres migrations.

type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleFreelancer UserRole = "freelancer"
	RoleCreator    UserRole = "creator"
)

type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Role          UserRole  `json:"role"`
	Username      string    `json:"username"`
	Bio           string    `json:"bio,omitempty"`
	Skills        []string  `json:"skills,omitempty"`
	Rating        float64   `json:"rating"`
	JobsCompleted int       `json:"jobs_completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

type Job struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Budget       float64   `json:"budget"`
	Duration     string    `json:"duration"`
	Skills       []string  `json:"skills,omitempty"`
	Requirements string    `json:"requirements,omitempty"`
	Status       JobStatus `json:"status"`
	EscrowLocked bool      `json:"escrow_locked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

type Proposal struct {
	ID           string         `json:"id"`
	JobID        string         `json:"job_id"`
	FreelancerID string         `json:"freelancer_id"`
	Budget       float64        `json:"budget"`
	Timeline     string         `json:"timeline"`
	CoverLetter  string         `json:"cover_letter"`
	Status       ProposalStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	SenderID       string          `json:"sender_id"`
	Content        string          `json:"content"`
	MessageType    string          `json:"message_type"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Conversation struct {
	ID           string    `json:"id"`
	Participant1 string    `json:"participant_1"`
	Participant2 string    `json:"participant_2"`
	JobID        string    `json:"job_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreatorNFT struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Supply      int       `json:"supply"`
	Sold        int       `json:"sold"`
	Tier        string    `json:"tier"`
	Benefits    []string  `json:"benefits,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReputationNFT struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	JobID       string          `json:"job_id"`
	NFTName     string          `json:"nft_name"`
	Description string          `json:"description"`
	Rarity      string          `json:"rarity"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	MintedAt    time.Time       `json:"minted_at"`
}
