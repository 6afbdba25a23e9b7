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

package types

// Role selects one side of a bilateral block.
type Role int

const (
	// Benefactor is the party giving in the agreement.
	Benefactor Role = iota
	// Beneficiary is the party receiving in the agreement.
	Beneficiary
)

// Roles lists both roles in their canonical order.
var Roles = [...]Role{Benefactor, Beneficiary}

func (r Role) String() string {
	switch r {
	case Benefactor:
		return "Benefactor"
	case Beneficiary:
		return "Beneficiary"
	default:
		return "Unknown"
	}
}

// Counterpart returns the other role.
func (r Role) Counterpart() Role {
	if r == Benefactor {
		return Beneficiary
	}
	return Benefactor
}

// Valid returns true for Benefactor and Beneficiary.
func (r Role) Valid() bool {
	return r == Benefactor || r == Beneficiary
}
