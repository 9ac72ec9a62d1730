// Package domain defines the entities of a group-hunt session: the session
// itself, registered participants, assignable stands, timed drives, the live
// event feed, and the harvest ledger. Entities are plain structs created
// through CreateX constructors that normalize and validate input; all
// cross-entity invariants are enforced by the service layer.
package domain
