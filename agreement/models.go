/*
 * Copyright 2018 The CovenantSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package agreement

import (
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/CovenantSQL/multichain/proto"
	"github.com/CovenantSQL/multichain/utils"
)

// Kind names the model of an agreement inside a payload envelope.
type Kind string

const (
	// KindLoanRequest is the kind of LoanRequest.
	KindLoanRequest Kind = "loan_request"
	// KindMortgage is the kind of Mortgage.
	KindMortgage Kind = "mortgage"
	// KindInvestment is the kind of Investment.
	KindInvestment Kind = "investment"
	// KindCampaign is the kind of Campaign.
	KindCampaign Kind = "campaign"
)

// Status is the state of an offer in the marketplace.
type Status int8

const (
	// StatusPending is an offer waiting for an answer.
	StatusPending Status = iota
	// StatusAccepted is an accepted offer.
	StatusAccepted
	// StatusRejected is a rejected offer.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Model is an agreement which can be carried by a block.
type Model interface {
	Kind() Kind
	normalize()
}

var factories = map[Kind]func() Model{
	KindLoanRequest: func() Model { return &LoanRequest{} },
	KindMortgage:    func() Model { return &Mortgage{} },
	KindInvestment:  func() Model { return &Investment{} },
	KindCampaign:    func() Model { return &Campaign{} },
}

// New returns an empty model of kind.
func New(kind Kind) (Model, error) {
	factory, ok := factories[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", kind)
	}
	return factory(), nil
}

// NewID returns a random agreement identifier.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// LoanRequest is a borrower asking a set of banks for a mortgage on a house.
type LoanRequest struct {
	ID           uuid.UUID
	UserKey      proto.Identity
	HouseID      uuid.UUID
	MortgageType int32
	Banks        []proto.Identity
	Description  string
	AmountWanted uint64
	// Status holds the answer of every bank the request was sent to.
	Status map[proto.Identity]Status
}

// Kind implements Model.Kind.
func (r *LoanRequest) Kind() Kind { return KindLoanRequest }

func (r *LoanRequest) normalize() {
	if r.Banks == nil {
		r.Banks = []proto.Identity{}
	}
	if r.Status == nil {
		r.Status = map[proto.Identity]Status{}
	}
}

// Mortgage is the offer of a bank answering a loan request.
type Mortgage struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	HouseID       uuid.UUID
	Bank          proto.Identity
	Amount        uint64
	MortgageType  int32
	InterestRate  float64
	MaxInvestRate float64
	DefaultRate   float64
	Duration      uint32
	Risk          string
	Investors     []proto.Identity
	Status        Status
}

// Kind implements Model.Kind.
func (m *Mortgage) Kind() Kind { return KindMortgage }

func (m *Mortgage) normalize() {
	if m.Investors == nil {
		m.Investors = []proto.Identity{}
	}
}

// Investment is the offer of an investor on a mortgage campaign.
type Investment struct {
	ID           uuid.UUID
	InvestorKey  proto.Identity
	Amount       uint64
	Duration     uint32
	InterestRate float64
	MortgageID   uuid.UUID
	Status       Status
}

// Kind implements Model.Kind.
func (i *Investment) Kind() Kind { return KindInvestment }

func (i *Investment) normalize() {}

// Campaign collects investments for the remaining amount of a mortgage.
type Campaign struct {
	ID         uuid.UUID
	MortgageID uuid.UUID
	Amount     int64
	EndDate    time.Time
	Completed  bool
}

// Kind implements Model.Kind.
func (c *Campaign) Kind() Kind { return KindCampaign }

func (c *Campaign) normalize() {
	c.EndDate = utils.NormalizeTime(c.EndDate)
}

// SubtractAmount books an investment on the campaign, which completes once nothing is
// left to fund.
func (c *Campaign) SubtractAmount(investment int64) {
	c.Amount -= investment
	if c.Amount <= 0 {
		c.Completed = true
	}
}
