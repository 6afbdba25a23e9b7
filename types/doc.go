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
Package types defines the block of a bilateral ledger.

A block records one agreement between a benefactor and a beneficiary. It carries the
agreement as encoded by each party, and for each party the position of the block in
that party's personal chain: a sequence number and the hash of the party's previous
block. Both parties sign the content hash of the header, and the block hash commits to
the header and both signatures.

A block is a value: once built from a finalized SignedConfirm message it is never
modified, and the ledger store hands out clones only.
*/
package types
