package economy

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Section names used as keys of Snapshot.Errors and as progress step ids
const (
	SectionLazyToken  = "lazyToken"
	SectionGasStation = "gasStation"
	SectionStaking    = "staking"
	SectionMissions   = "missions"
	SectionBoost      = "boost"
)

// Sections lists every snapshot section in collection order
var Sections = []string{SectionLazyToken, SectionGasStation, SectionStaking, SectionMissions, SectionBoost}

// Snapshot is one point-in-time read of the LAZY economy. Sections that
// could not be read are nil and explained in Errors.
type Snapshot struct {
	ID         string            `json:"id"`
	Network    string            `json:"network"`
	CapturedAt time.Time         `json:"capturedAt"`
	LazyToken  *LazyToken        `json:"lazyToken,omitempty"`
	GasStation *GasStation       `json:"gasStation,omitempty"`
	Staking    *Staking          `json:"staking,omitempty"`
	Missions   *MissionStats     `json:"missions,omitempty"`
	Boost      *Boost            `json:"boost,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

type LazyToken struct {
	TokenID     string `json:"tokenId"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
	Treasury    string `json:"treasury"`
}

// GasStation balances are in tinybar and the smallest LAZY unit
type GasStation struct {
	ContractID     string `json:"contractId"`
	HbarBalance    int64  `json:"hbarBalance"`
	LazyBalance    int64  `json:"lazyBalance"`
	BurnPercentage int64  `json:"burnPercentage"`
}

type Staking struct {
	ContractID         string   `json:"contractId"`
	TotalItemsStaked   int64    `json:"totalItemsStaked"`
	Collections        []string `json:"collections"`
	DistributionPeriod int64    `json:"distributionPeriod"`
	BoostRate          *int64   `json:"boostRate,omitempty"`
}

type MissionStats struct {
	FactoryID      string           `json:"factoryId"`
	Count          int              `json:"count"`
	Live           []MissionSummary `json:"live"`
	TotalSlots     int64            `json:"totalSlots"`
	SlotsAvailable int64            `json:"slotsAvailable"`
}

// MissionSummary describes one deployed mission. Missions whose reads fail
// are listed with Error set and left out of the slot totals.
type MissionSummary struct {
	Address        string `json:"address"`
	ContractID     string `json:"contractId,omitempty"`
	SlotsRemaining int64  `json:"slotsRemaining"`
	Participants   int64  `json:"participants"`
	EntryFee       string `json:"entryFee,omitempty"`
	Error          string `json:"error,omitempty"`
}

type Boost struct {
	ContractID           string `json:"contractId"`
	LazyCost             string `json:"lazyCost"`
	LazyReductionPercent int64  `json:"lazyReductionPercent"`
}

// NewSnapshot returns an empty snapshot stamped with a fresh id
func NewSnapshot(network string) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		Network:    network,
		CapturedAt: time.Now().UTC(),
	}
}

// Fail records a section failure
func (s *Snapshot) Fail(section string, err error) {
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	s.Errors[section] = err.Error()
}

// FailedSections returns the sections recorded in Errors, sorted
func (s *Snapshot) FailedSections() []string {
	out := make([]string, 0, len(s.Errors))
	for k := range s.Errors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Complete reports whether every section was read
func (s *Snapshot) Complete() bool {
	return len(s.Errors) == 0
}

// Latest holds the most recent snapshot for concurrent readers
type Latest struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func (l *Latest) Set(s *Snapshot) {
	l.mu.Lock()
	l.snap = s
	l.mu.Unlock()
}

func (l *Latest) Get() (*Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap, l.snap != nil
}
