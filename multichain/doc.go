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

/*
Package multichain implements the local ledger of a participant in a bilateral
agreement network.

Every identity owns a personal chain: the blocks it signed, in either role, ordered by
its own sequence number and linked by the hash of its previous block. A Chain stores
blocks by hash, indexes them by (identity, sequence number) for both parties, and only
appends a block if it extends the personal chains of both parties by exactly one.
*/
package multichain
