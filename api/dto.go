/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the simulation's internal model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

QUANTITIES:
  Quantities are decimal.Decimal and serialise as JSON strings ("12.5"),
  so clients see exactly what the ledger holds.

SEE ALSO:
  - handlers.go: Uses these types
  - generic/summary.go: Summary aggregated by SummaryDTO
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/manure"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResourceDTO represents one resource store.
type ResourceDTO struct {
	ID              string           `json:"id"`
	Domain          string           `json:"domain"`
	Kind            string           `json:"kind"`
	Unit            string           `json:"unit"`
	Amount          decimal.Decimal  `json:"amount"`
	Uncollected     *decimal.Decimal `json:"uncollected,omitempty"`
	LastTransaction *TransactionDTO  `json:"last_transaction,omitempty"`
}

// TransactionDTO represents one credit or debit record.
type TransactionDTO struct {
	ID       string          `json:"id"`
	Resource string          `json:"resource"`
	Type     string          `json:"type"`
	Credit   decimal.Decimal `json:"credit"`
	Debit    decimal.Decimal `json:"debit"`
	Unit     string          `json:"unit"`
	Activity string          `json:"activity,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Step     int             `json:"step"`
	At       string          `json:"at,omitempty"` // empty when no clock stamped it
}

// StoreDTO represents one uncollected store of a decaying resource.
type StoreDTO struct {
	Name      string          `json:"name"`
	Total     decimal.Decimal `json:"total"`
	WetWeight decimal.Decimal `json:"wet_weight"`
	Pools     []PoolDTO       `json:"pools"`
}

// PoolDTO represents one age cohort.
type PoolDTO struct {
	Age                int             `json:"age"`
	Quantity           decimal.Decimal `json:"quantity"`
	ProportionMoisture decimal.Decimal `json:"proportion_moisture"`
	WetWeight          decimal.Decimal `json:"wet_weight"`
}

// SummaryDTO is the activity-cost summary of one resource.
type SummaryDTO struct {
	Resource     string               `json:"resource"`
	Unit         string               `json:"unit"`
	Credits      decimal.Decimal      `json:"credits"`
	Debits       decimal.Decimal      `json:"debits"`
	Net          decimal.Decimal      `json:"net"`
	Transactions int                  `json:"transactions"`
	FirstStep    int                  `json:"first_step"`
	LastStep     int                  `json:"last_step"`
	Activities   []ActivitySummaryDTO `json:"activities"`
}

// ActivitySummaryDTO is the per-activity part of a summary.
type ActivitySummaryDTO struct {
	Activity     string          `json:"activity"`
	Credits      decimal.Decimal `json:"credits"`
	Debits       decimal.Decimal `json:"debits"`
	Net          decimal.Decimal `json:"net"`
	Transactions int             `json:"transactions"`
}

// SimulationDTO is the clock status of the running simulation.
type SimulationDTO struct {
	Step      int                 `json:"step"`
	Date      string              `json:"date"`
	Resources int                 `json:"resources"`
	Phases    map[string][]string `json:"phases"`
	Scenario  string              `json:"scenario,omitempty"`
}

// ScenarioDTO describes a built-in demo farm.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the request to load a demo farm.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTransactionDTO(tx generic.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:       string(tx.ID),
		Resource: tx.Resource,
		Type:     string(tx.Type),
		Credit:   tx.Credit,
		Debit:    tx.Debit,
		Unit:     string(tx.Unit),
		Activity: tx.Activity,
		Reason:   tx.Reason,
		Step:     tx.Step,
	}
	if !tx.At.IsZero() {
		dto.At = tx.At.String()
	}
	return dto
}

func toTransactionDTOs(txs []generic.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toResourceDTO(res generic.Resource) ResourceDTO {
	rt := res.ResourceType()
	dto := ResourceDTO{
		ID:     rt.ResourceID(),
		Domain: rt.ResourceDomain(),
		Kind:   "simple",
		Unit:   string(res.Unit()),
		Amount: res.Amount().Value,
	}
	if ms, ok := res.(*manure.Store); ok {
		dto.Kind = "decaying"
		total := ms.TotalUncollected()
		dto.Uncollected = &total
	}
	if tx, ok := res.LastTransaction(); ok {
		txDTO := toTransactionDTO(tx)
		dto.LastTransaction = &txDTO
	}
	return dto
}

func toStoreDTO(u *manure.Uncollected) StoreDTO {
	dto := StoreDTO{
		Name:      u.Name,
		Total:     u.Total(),
		WetWeight: u.WetWeight(),
		Pools:     make([]PoolDTO, len(u.Pools)),
	}
	for i, p := range u.Pools {
		dto.Pools[i] = PoolDTO{
			Age:                p.Age,
			Quantity:           p.Quantity,
			ProportionMoisture: p.ProportionMoisture,
			WetWeight:          p.WetWeight(),
		}
	}
	return dto
}

func toSummaryDTO(s generic.Summary) SummaryDTO {
	dto := SummaryDTO{
		Resource:     s.Resource,
		Unit:         string(s.Unit),
		Credits:      s.Totals.Credits,
		Debits:       s.Totals.Debits,
		Net:          s.Totals.Net(),
		Transactions: s.Totals.Transactions,
		FirstStep:    s.FirstStep,
		LastStep:     s.LastStep,
		Activities:   []ActivitySummaryDTO{},
	}
	for _, name := range s.Activities() {
		t := s.ByActivity[name]
		dto.Activities = append(dto.Activities, ActivitySummaryDTO{
			Activity:     name,
			Credits:      t.Credits,
			Debits:       t.Debits,
			Net:          t.Net(),
			Transactions: t.Transactions,
		})
	}
	return dto
}
