package model

import "time"

// RoomType enumerates the closed set of room categories.  The values
// match the `type` column of the rooms table and are validated by the
// room registry before a room is created.
type RoomType string

const (
	RoomTypeStandard   RoomType = "STANDARD"   // regular meeting room
	RoomTypeTraining   RoomType = "TRAINING"   // training room with AV equipment
	RoomTypeConference RoomType = "CONFERENCE" // large conference room
	RoomTypeBoardroom  RoomType = "BOARDROOM"  // executive boardroom
)

// Valid reports whether t is one of the known room types.
func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeStandard, RoomTypeTraining, RoomTypeConference, RoomTypeBoardroom:
		return true
	}
	return false
}

// Room represents a bookable conference room.  A room is never
// physically deleted; deactivation flips IsActive to false and the
// record stays for history.  The ID is assigned by the store on
// creation and is never supplied by clients.
//
// Fields:
//  ID        – primary key identifier, store-assigned.
//  Number    – human label, unique among active rooms.
//  Capacity  – seating capacity, always positive.
//  Type      – room category (see RoomType).
//  Location  – optional free-form location text (building, floor).
//  IsActive  – false when the room is soft-deleted.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    // rooms.id
	Number    string    // rooms.number
	Capacity  uint32    // rooms.capacity
	Type      RoomType  // rooms.type
	Location  *string   // rooms.location (nullable)
	IsActive  bool      // rooms.is_active
	CreatedAt time.Time // rooms.created_at
	UpdatedAt time.Time // rooms.updated_at
}
