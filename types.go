package cassandra

import (
	"fmt"
	"strings"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const uuidLength = 16

// UUID binds a "uuid" of any version. Use TimeUUID for "timeuuid" columns.
type UUID [uuidLength]byte

// TimeUUID binds a "timeuuid". Binding fails with ErrEncoding unless it holds
// a version 1 UUID.
type TimeUUID UUID

// ParseUUID parses the textual forms accepted by github.com/google/uuid.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, getError(ErrEncoding, err)
	}
	return UUID(id), nil
}

// RandomUUID returns a version 4 UUID.
func RandomUUID() UUID {
	return UUID(uuid.New())
}

// NewTimeUUID returns a version 1 UUID for the current time.
func NewTimeUUID() (TimeUUID, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return TimeUUID{}, getError(ErrEncoding, err)
	}
	return TimeUUID(id), nil
}

// IsTimeBased reports whether u is a version 1 UUID.
func (u UUID) IsTimeBased() bool {
	return uuid.UUID(u).Version() == 1
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// UUID returns u as a plain "uuid" value.
func (u TimeUUID) UUID() UUID {
	return UUID(u)
}

func (u TimeUUID) String() string {
	return uuid.UUID(u).String()
}

// Consistency is a consistency level. ConsistencySerial and
// ConsistencyLocalSerial are the only valid serial consistency levels.
type Consistency uint16

const (
	ConsistencyAny         = Consistency(gocql.Any)
	ConsistencyOne         = Consistency(gocql.One)
	ConsistencyTwo         = Consistency(gocql.Two)
	ConsistencyThree       = Consistency(gocql.Three)
	ConsistencyQuorum      = Consistency(gocql.Quorum)
	ConsistencyAll         = Consistency(gocql.All)
	ConsistencyLocalQuorum = Consistency(gocql.LocalQuorum)
	ConsistencyEachQuorum  = Consistency(gocql.EachQuorum)
	ConsistencySerial      = Consistency(gocql.Serial)
	ConsistencyLocalSerial = Consistency(gocql.LocalSerial)
	ConsistencyLocalOne    = Consistency(gocql.LocalOne)
)

// IsSerial reports whether c is a serial consistency level.
func (c Consistency) IsSerial() bool {
	return c == ConsistencySerial || c == ConsistencyLocalSerial
}

func (c Consistency) String() string {
	switch c {
	case ConsistencySerial:
		return "SERIAL"
	case ConsistencyLocalSerial:
		return "LOCAL_SERIAL"
	}
	return gocql.Consistency(c).String()
}

// ParseConsistency parses a consistency level name such as "LOCAL_QUORUM".
func ParseConsistency(s string) (Consistency, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	switch name {
	case "SERIAL":
		return ConsistencySerial, nil
	case "LOCAL_SERIAL":
		return ConsistencyLocalSerial, nil
	}
	c, err := gocql.ParseConsistencyWrapper(name)
	if err != nil {
		return 0, getError(ErrRejected, fmt.Errorf("invalid consistency %q: %w", s, err))
	}
	return Consistency(c), nil
}
