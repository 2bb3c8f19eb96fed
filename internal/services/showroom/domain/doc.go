// Package domain defines the showroom domain model: users, products with
// their scenarios and characteristics, test sessions, and the interactions
// recorded while a session runs.
package domain
