// Package answers holds the mutable answer bag collected during a
// questionnaire attempt, with change subscriptions that drive visibility
// recomputation and other reactive behaviour.
package answers
