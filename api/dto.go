/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  accounting.Money marshals as a plain JSON number with two decimals, so
  DTOs embed it directly instead of converting to float64.

VALIDATION:
  Validation is done in the room service, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - room/service.go: The operations these map onto
*/
package api

import (
	"time"

	"github.com/listerineh/payplay-app/accounting"
	"github.com/listerineh/payplay-app/dashboard"
	"github.com/listerineh/payplay-app/room"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// UserDTO represents a directory user in API responses.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// PaymentDTO is one participant's payment record.
type PaymentDTO struct {
	UserID     string           `json:"userId"`
	AmountDue  accounting.Money `json:"amountDue"`
	AmountPaid accounting.Money `json:"amountPaid"`
}

// CommentDTO is one discussion entry.
type CommentDTO struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar,omitempty"`
	Text       string `json:"text"`
	CreatedAt  string `json:"createdAt"`
}

// RoomDTO represents a saving room in API responses.
type RoomDTO struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	CreatorID     string           `json:"creatorId"`
	Goal          string           `json:"goal,omitempty"`
	TotalAmount   accounting.Money `json:"totalAmount"`
	PaymentPeriod string           `json:"paymentPeriod"`
	Participants  []UserDTO        `json:"participants"`
	Payments      []PaymentDTO     `json:"payments"`
	Discussion    []CommentDTO     `json:"discussion"`
	CreatedAt     string           `json:"createdAt"`
	Version       int64            `json:"version"`
}

// PeriodDTO is one elapsed billing period.
type PeriodDTO struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	DueDate string `json:"dueDate"`
}

// SummaryDTO is the room-level progress header.
type SummaryDTO struct {
	TotalDueToDate accounting.Money `json:"totalDueToDate"`
	TotalPaid      accounting.Money `json:"totalPaid"`
	Progress       float64          `json:"progress"`
}

// ChartRowDTO is one bar of the per-participant chart.
type ChartRowDTO struct {
	Name    string           `json:"name"`
	Paid    accounting.Money `json:"paid"`
	Pending accounting.Money `json:"pending"`
	Total   accounting.Money `json:"total"`
}

// AllocationDTO is one period row of a participant's payment breakdown.
type AllocationDTO struct {
	Period  PeriodDTO        `json:"period"`
	Due     accounting.Money `json:"due"`
	Paid    accounting.Money `json:"paid"`
	Balance accounting.Money `json:"balance"`
}

// WindowDTO is progress through the currently open period.
type WindowDTO struct {
	Progress float64 `json:"progress"`
	Start    string  `json:"start,omitempty"`
	End      string  `json:"end,omitempty"`
}

// TransactionDTO is one ledger entry.
type TransactionDTO struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Amount      accounting.Money `json:"amount"`
	Category    string           `json:"category,omitempty"`
	Date        string           `json:"date"`
	Type        string           `json:"type"`
	UserID      string           `json:"userId"`
	RoomID      string           `json:"roomId,omitempty"`
}

// RoomViewDTO is the complete derived state a room screen renders.
type RoomViewDTO struct {
	Room      RoomDTO                    `json:"room"`
	Periods   []PeriodDTO                `json:"periods"`
	Summary   SummaryDTO                 `json:"summary"`
	Statuses  map[string]string          `json:"statuses"`
	Chart     []ChartRowDTO              `json:"chart"`
	Breakdown map[string][]AllocationDTO `json:"breakdown"`
	Window    WindowDTO                  `json:"window"`
	History   []TransactionDTO           `json:"history"`
}

// CategorySliceDTO is one slice of the expense pie chart.
type CategorySliceDTO struct {
	Category   string           `json:"category"`
	Amount     accounting.Money `json:"amount"`
	Percentage float64          `json:"percentage"`
}

// DashboardDTO is the landing-page summary.
type DashboardDTO struct {
	TotalBalance  accounting.Money   `json:"totalBalance"`
	TotalIncome   accounting.Money   `json:"totalIncome"`
	TotalExpenses accounting.Money   `json:"totalExpenses"`
	Breakdown     []CategorySliceDTO `json:"breakdown"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateRoomRequest is the create form. Amount is the per-participant due
// amount per period; the room total is derived server-side.
type CreateRoomRequest struct {
	Name           string   `json:"name"`
	Goal           string   `json:"goal"`
	Amount         float64  `json:"amount"`
	PaymentPeriod  string   `json:"paymentPeriod"`
	ParticipantIDs []string `json:"participantIds"`
}

// UpdateRoomRequest restructures a room. The payment period is immutable
// and deliberately absent.
type UpdateRoomRequest struct {
	Name           string   `json:"name"`
	Goal           string   `json:"goal"`
	ParticipantIDs []string `json:"participantIds"`
}

// RecordPaymentRequest logs a contribution against one participant.
type RecordPaymentRequest struct {
	ParticipantID string  `json:"participantId"`
	Amount        float64 `json:"amount"`
}

// AddCommentRequest posts to the discussion thread.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// AddTransactionRequest logs a personal income or expense entry.
type AddTransactionRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toUserDTO(u room.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

func toRoomDTO(r *room.SavingRoom) RoomDTO {
	participants := make([]UserDTO, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = UserDTO{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
	}
	payments := make([]PaymentDTO, len(r.Payments))
	for i, p := range r.Payments {
		payments[i] = PaymentDTO{UserID: p.UserID, AmountDue: p.AmountDue, AmountPaid: p.AmountPaid}
	}
	discussion := make([]CommentDTO, len(r.Discussion))
	for i, c := range r.Discussion {
		discussion[i] = CommentDTO{
			ID:         c.ID,
			UserID:     c.UserID,
			UserName:   c.UserName,
			UserAvatar: c.UserAvatar,
			Text:       c.Text,
			CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		}
	}
	return RoomDTO{
		ID:            r.ID,
		Name:          r.Name,
		CreatorID:     r.CreatorID,
		Goal:          r.Goal,
		TotalAmount:   r.TotalAmount,
		PaymentPeriod: string(r.PaymentPeriod),
		Participants:  participants,
		Payments:      payments,
		Discussion:    discussion,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		Version:       r.Version,
	}
}

func toPeriodDTO(p accounting.Period) PeriodDTO {
	return PeriodDTO{Key: p.Key, Label: p.Label, DueDate: p.DueDate.Format(time.RFC3339)}
}

func toTransactionDTO(tx room.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Category:    tx.Category,
		Date:        tx.Date.Format(time.RFC3339),
		Type:        string(tx.Type),
		UserID:      tx.UserID,
		RoomID:      tx.RoomID,
	}
}

func toTransactionDTOs(txs []room.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionDTO(tx)
	}
	return out
}

func toRoomViewDTO(v *room.RoomView) RoomViewDTO {
	periods := make([]PeriodDTO, len(v.Periods))
	for i, p := range v.Periods {
		periods[i] = toPeriodDTO(p)
	}

	statuses := make(map[string]string, len(v.Statuses))
	for userID, status := range v.Statuses {
		statuses[userID] = string(status)
	}

	chart := make([]ChartRowDTO, len(v.Chart))
	for i, row := range v.Chart {
		chart[i] = ChartRowDTO{Name: row.Name, Paid: row.Paid, Pending: row.Pending, Total: row.Total}
	}

	breakdown := make(map[string][]AllocationDTO, len(v.Breakdown))
	for userID, rows := range v.Breakdown {
		dtos := make([]AllocationDTO, len(rows))
		for i, row := range rows {
			dtos[i] = AllocationDTO{
				Period:  toPeriodDTO(row.Period),
				Due:     row.Due,
				Paid:    row.Paid,
				Balance: row.Balance,
			}
		}
		breakdown[userID] = dtos
	}

	window := WindowDTO{Progress: v.Window.Progress}
	if !v.Window.Start.IsZero() {
		window.Start = v.Window.Start.Format(time.RFC3339)
		window.End = v.Window.End.Format(time.RFC3339)
	}

	return RoomViewDTO{
		Room:      toRoomDTO(v.Room),
		Periods:   periods,
		Summary:   SummaryDTO{TotalDueToDate: v.Summary.TotalDueToDate, TotalPaid: v.Summary.TotalPaid, Progress: v.Summary.Progress},
		Statuses:  statuses,
		Chart:     chart,
		Breakdown: breakdown,
		Window:    window,
		History:   toTransactionDTOs(v.History),
	}
}

func toDashboardDTO(s dashboard.Summary) DashboardDTO {
	breakdown := make([]CategorySliceDTO, len(s.Breakdown))
	for i, slice := range s.Breakdown {
		breakdown[i] = CategorySliceDTO{Category: slice.Category, Amount: slice.Amount, Percentage: slice.Percentage}
	}
	return DashboardDTO{
		TotalBalance:  s.TotalBalance,
		TotalIncome:   s.TotalIncome,
		TotalExpenses: s.TotalExpenses,
		Breakdown:     breakdown,
	}
}
