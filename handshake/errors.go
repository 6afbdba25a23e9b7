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

package handshake

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotPrepared indicates a call from a round that does not hold the participant.
	ErrNotPrepared = errors.New("participant is not prepared for this round")
	// ErrHeaderMismatch indicates a header or block that differs from the participant offer.
	ErrHeaderMismatch = errors.New("header does not match the offer")
	// ErrSelfAgreement indicates both sides of a round are the same identity.
	ErrSelfAgreement = errors.New("participant cannot agree with itself")
	// ErrAgreementTooLarge indicates an agreement exceeding conf.MaxAgreementSize.
	ErrAgreementTooLarge = errors.New("agreement too large")
	// ErrNilParticipant indicates a round without one of its sides.
	ErrNilParticipant = errors.New("nil participant")
)
