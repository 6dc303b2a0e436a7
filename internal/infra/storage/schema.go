package storage

import (
	"fmt"
	"sort"
)

// Collection names a table of the marketplace schema.
type Collection string

const (
	Users          Collection = "users"
	Jobs           Collection = "jobs"
	Proposals      Collection = "proposals"
	Messages       Collection = "messages"
	Conversations  Collection = "conversations"
	CreatorNFTs    Collection = "creator_nfts"
	ReputationNFTs Collection = "reputation_nfts"
)

// ColumnType is the Postgres type of a column as reported by
// information_schema.columns.data_type.
type ColumnType string

const (
	TypeUUID      ColumnType = "uuid"
	TypeText      ColumnType = "text"
	TypeTextArray ColumnType = "ARRAY"
	TypeNumeric   ColumnType = "numeric"
	TypeInteger   ColumnType = "integer"
	TypeBool      ColumnType = "boolean"
	TypeJSONB     ColumnType = "jsonb"
	TypeTimestamp ColumnType = "timestamp with time zone"
)

// Column is one canonical column. Generated columns have database defaults
// (ids and timestamps) and may be omitted on insert.
type Column struct {
	Name      string
	Type      ColumnType
	Generated bool
}

func col(name string, t ColumnType) Column { return Column{Name: name, Type: t} }
func gen(name string, t ColumnType) Column { return Column{Name: name, Type: t, Generated: true} }

// Schema is the canonical column set of every collection. The postgres
// migrations create exactly these columns.
var Schema = map[Collection][]Column{
	Users: {
		gen("id", TypeUUID),
		col("wallet_address", TypeText),
		col("role", TypeText),
		col("username", TypeText),
		col("bio", TypeText),
		col("skills", TypeTextArray),
		col("rating", TypeNumeric),
		col("jobs_completed", TypeInteger),
		gen("created_at", TypeTimestamp),
		gen("updated_at", TypeTimestamp),
	},
	Jobs: {
		gen("id", TypeUUID),
		col("client_id", TypeUUID),
		col("title", TypeText),
		col("description", TypeText),
		col("category", TypeText),
		col("budget", TypeNumeric),
		col("duration", TypeText),
		col("skills", TypeTextArray),
		col("requirements", TypeText),
		col("status", TypeText),
		col("escrow_locked", TypeBool),
		gen("created_at", TypeTimestamp),
		gen("updated_at", TypeTimestamp),
	},
	Proposals: {
		gen("id", TypeUUID),
		col("job_id", TypeUUID),
		col("freelancer_id", TypeUUID),
		col("budget", TypeNumeric),
		col("timeline", TypeText),
		col("cover_letter", TypeText),
		col("status", TypeText),
		gen("created_at", TypeTimestamp),
	},
	Messages: {
		gen("id", TypeUUID),
		col("conversation_id", TypeUUID),
		col("sender_id", TypeUUID),
		col("content", TypeText),
		col("message_type", TypeText),
		col("metadata", TypeJSONB),
		gen("created_at", TypeTimestamp),
	},
	Conversations: {
		gen("id", TypeUUID),
		col("participant_1", TypeUUID),
		col("participant_2", TypeUUID),
		col("job_id", TypeUUID),
		gen("created_at", TypeTimestamp),
	},
	CreatorNFTs: {
		gen("id", TypeUUID),
		col("creator_id", TypeUUID),
		col("name", TypeText),
		col("description", TypeText),
		col("price", TypeNumeric),
		col("supply", TypeInteger),
		col("sold", TypeInteger),
		col("tier", TypeText),
		col("benefits", TypeTextArray),
		gen("created_at", TypeTimestamp),
	},
	ReputationNFTs: {
		gen("id", TypeUUID),
		col("user_id", TypeUUID),
		col("job_id", TypeUUID),
		col("nft_name", TypeText),
		col("description", TypeText),
		col("rarity", TypeText),
		col("metadata", TypeJSONB),
		gen("minted_at", TypeTimestamp),
	},
}

// Defaults are the database defaults of non-generated columns, applied by
// stores that have no database to do it.
var Defaults = map[Collection]Row{
	Users:          {"rating": 0.0, "jobs_completed": 0},
	Jobs:           {"status": "open", "escrow_locked": false},
	Proposals:      {"status": "pending"},
	Messages:       {"message_type": "text"},
	CreatorNFTs:    {"sold": 0, "tier": "bronze"},
	ReputationNFTs: {"rarity": "common"},
}

// Collections returns every collection name, sorted.
func Collections() []Collection {
	out := make([]Collection, 0, len(Schema))
	for c := range Schema {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Columns returns the canonical columns of c.
func Columns(c Collection) ([]Column, error) {
	cols, ok := Schema[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	return cols, nil
}

// Lookup returns the column named name in c.
func Lookup(c Collection, name string) (Column, error) {
	cols, err := Columns(c)
	if err != nil {
		return Column{}, err
	}
	for _, col := range cols {
		if col.Name == name {
			return col, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, c, name)
}

// Validate checks a query and an optional write against the schema.
func Validate(c Collection, q Query, write Row) error {
	if _, err := Columns(c); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if _, err := Lookup(c, f.Column); err != nil {
			return err
		}
	}
	if q.OrderBy != "" {
		if _, err := Lookup(c, q.OrderBy); err != nil {
			return err
		}
	}
	for name := range write {
		if _, err := Lookup(c, name); err != nil {
			return err
		}
	}
	return nil
}

// HasColumn reports whether c has a column named name.
func HasColumn(c Collection, name string) bool {
	_, err := Lookup(c, name)
	return err == nil
}

// Unique lists the uniqueness constraints of each collection.
var Unique = map[Collection][][]string{
	Users:         {{"wallet_address"}},
	Conversations: {{"participant_1", "participant_2", "job_id"}},
}
