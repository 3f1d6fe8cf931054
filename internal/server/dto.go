package server

import "crew-pnl-service/internal/domain"

// Response DTOs. Domain structs carry no serialization tags; the wire shape
// is owned here.

type positionResponse struct {
	TokenAddress   string   `json:"tokenAddress"`
	Chain          string   `json:"chain"`
	Quantity       float64  `json:"quantity"`
	AvgCostBasis   float64  `json:"avgCostBasis"`
	TotalCostBasis float64  `json:"totalCostBasis"`
	CurrentPrice   *float64 `json:"currentPrice,omitempty"`
	CurrentValue   *float64 `json:"currentValue,omitempty"`
	UnrealizedPnL  *float64 `json:"unrealizedPnl,omitempty"`
}

type metricsResponse struct {
	TotalTrades      int     `json:"totalTrades"`
	ProfitableTrades int     `json:"profitableTrades"`
	LosingTrades     int     `json:"losingTrades"`
	WinRate          float64 `json:"winRate"`
	Volume           float64 `json:"volume"`
	AvgWin           float64 `json:"avgWin"`
	AvgLoss          float64 `json:"avgLoss"`
}

type tradeResponse struct {
	TradeID          int64    `json:"tradeId"`
	Chain            string   `json:"chain"`
	Direction        string   `json:"direction"`
	TokenInAddress   string   `json:"tokenInAddress,omitempty"`
	TokenOutAddress  string   `json:"tokenOutAddress,omitempty"`
	Amount           *float64 `json:"amount"`
	USDValue         float64  `json:"usdValue"`
	Timestamp        int64    `json:"timestamp"`
	RealizedPnL      float64  `json:"realizedPnl"`
	CostBasisUsed    float64  `json:"costBasisUsed"`
	OversoldQuantity float64  `json:"oversoldQuantity,omitempty"`
}

type pnlResponse struct {
	Positions     []positionResponse `json:"positions"`
	RealizedPnL   float64            `json:"realizedPnl"`
	UnrealizedPnL float64            `json:"unrealizedPnl"`
	TotalPnL      float64            `json:"totalPnl"`
	Metrics       metricsResponse    `json:"metrics"`
	TradeHistory  []tradeResponse    `json:"tradeHistory"`
}

func toPnLResponse(r *domain.PnLResult) pnlResponse {
	resp := pnlResponse{
		Positions:     make([]positionResponse, 0, len(r.Positions)),
		RealizedPnL:   r.RealizedPnL,
		UnrealizedPnL: r.UnrealizedPnL,
		TotalPnL:      r.TotalPnL,
		Metrics: metricsResponse{
			TotalTrades:      r.Metrics.TotalTrades,
			ProfitableTrades: r.Metrics.ProfitableTrades,
			LosingTrades:     r.Metrics.LosingTrades,
			WinRate:          r.Metrics.WinRate,
			Volume:           r.Metrics.Volume,
			AvgWin:           r.Metrics.AvgWin,
			AvgLoss:          r.Metrics.AvgLoss,
		},
		TradeHistory: make([]tradeResponse, 0, len(r.TradeHistory)),
	}

	for _, p := range r.Positions {
		resp.Positions = append(resp.Positions, positionResponse{
			TokenAddress:   p.TokenAddress,
			Chain:          p.Chain,
			Quantity:       p.Quantity,
			AvgCostBasis:   p.AvgCostBasis,
			TotalCostBasis: p.TotalCostBasis,
			CurrentPrice:   p.CurrentPrice,
			CurrentValue:   p.CurrentValue,
			UnrealizedPnL:  p.UnrealizedPnL,
		})
	}
	for _, t := range r.TradeHistory {
		resp.TradeHistory = append(resp.TradeHistory, tradeResponse{
			TradeID:          t.TradeID,
			Chain:            t.Chain,
			Direction:        t.Direction,
			TokenInAddress:   t.TokenInAddress,
			TokenOutAddress:  t.TokenOutAddress,
			Amount:           t.Amount,
			USDValue:         t.USDValue,
			Timestamp:        t.Timestamp,
			RealizedPnL:      t.RealizedPnL,
			CostBasisUsed:    t.CostBasisUsed,
			OversoldQuantity: t.OversoldQuantity,
		})
	}
	return resp
}

type leaderboardEntryResponse struct {
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Rank        int     `json:"rank"`
	RealizedPnL float64 `json:"realizedPnl"`
	TotalPnL    float64 `json:"totalPnl"`
	Volume      float64 `json:"volume"`
	WinRate     float64 `json:"winRate"`
	TotalTrades int     `json:"totalTrades"`
	Value       float64 `json:"value"`
}

type leaderboardResponse struct {
	Entries []leaderboardEntryResponse `json:"entries"`
	Total   int                        `json:"total"`
	Limit   int                        `json:"limit"`
	Offset  int                        `json:"offset"`
}

func toLeaderboardResponse(p *domain.LeaderboardPage) leaderboardResponse {
	resp := leaderboardResponse{
		Entries: make([]leaderboardEntryResponse, 0, len(p.Entries)),
		Total:   p.Total,
		Limit:   p.Limit,
		Offset:  p.Offset,
	}
	for i, e := range p.Entries {
		resp.Entries = append(resp.Entries, leaderboardEntryResponse{
			UserID:      e.UserID,
			Username:    e.Username,
			Rank:        p.Offset + i + 1,
			RealizedPnL: e.RealizedPnL,
			TotalPnL:    e.TotalPnL,
			Volume:      e.Volume,
			WinRate:     e.WinRate,
			TotalTrades: e.TotalTrades,
			Value:       e.Value,
		})
	}
	return resp
}

type crewLeaderboardEntryResponse struct {
	CrewID      string  `json:"crewId"`
	Name        string  `json:"name"`
	Rank        int     `json:"rank"`
	MemberCount int     `json:"memberCount"`
	RealizedPnL float64 `json:"realizedPnl"`
	TotalPnL    float64 `json:"totalPnl"`
	Volume      float64 `json:"volume"`
	AvgWinRate  float64 `json:"avgWinRate"`
	TotalTrades int     `json:"totalTrades"`
	Value       float64 `json:"value"`
}

type crewLeaderboardResponse struct {
	Entries []crewLeaderboardEntryResponse `json:"entries"`
	Total   int                            `json:"total"`
	Limit   int                            `json:"limit"`
	Offset  int                            `json:"offset"`
}

func toCrewLeaderboardResponse(p *domain.CrewLeaderboardPage) crewLeaderboardResponse {
	resp := crewLeaderboardResponse{
		Entries: make([]crewLeaderboardEntryResponse, 0, len(p.Entries)),
		Total:   p.Total,
		Limit:   p.Limit,
		Offset:  p.Offset,
	}
	for i, e := range p.Entries {
		resp.Entries = append(resp.Entries, crewLeaderboardEntryResponse{
			CrewID:      e.CrewID,
			Name:        e.Name,
			Rank:        p.Offset + i + 1,
			MemberCount: e.MemberCount,
			RealizedPnL: e.RealizedPnL,
			TotalPnL:    e.TotalPnL,
			Volume:      e.Volume,
			AvgWinRate:  e.AvgWinRate,
			TotalTrades: e.TotalTrades,
			Value:       e.Value,
		})
	}
	return resp
}

type challengeResponse struct {
	ID            string  `json:"id"`
	ChallengerID  string  `json:"challengerId"`
	OpponentID    string  `json:"opponentId"`
	Status        string  `json:"status"`
	DurationHours int     `json:"durationHours"`
	StartAt       *int64  `json:"startAt,omitempty"`
	EndAt         *int64  `json:"endAt,omitempty"`
	WinnerCrewID  *string `json:"winnerCrewId,omitempty"`
	CreatedAt     int64   `json:"createdAt"`
}

func toChallengeResponse(c *domain.Challenge) challengeResponse {
	return challengeResponse{
		ID:            c.ID,
		ChallengerID:  c.ChallengerID,
		OpponentID:    c.OpponentID,
		Status:        c.Status,
		DurationHours: c.DurationHours,
		StartAt:       c.StartAt,
		EndAt:         c.EndAt,
		WinnerCrewID:  c.WinnerCrewID,
		CreatedAt:     c.CreatedAt,
	}
}
