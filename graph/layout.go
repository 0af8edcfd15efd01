// ABOUTME: Grid placement helpers that seed an editor from a list of records
// ABOUTME: Used by exports and tools that have no pointer to drop with
package graph

import "github.com/harperreed/keyaccounts/models"

// Grid spacing between seeded nodes.
const (
	GridColumns  = 4
	GridSpacingX = 220
	GridSpacingY = 140
)

// GridPosition returns the canvas position of the i-th seeded node.
func GridPosition(i int) Position {
	return Position{
		X: float64(i%GridColumns) * GridSpacingX,
		Y: float64(i/GridColumns) * GridSpacingY,
	}
}

// TerritoryFromAccounts drops every account onto a new territory map.
func TerritoryFromAccounts(accounts []models.Account) (*Editor, error) {
	e := NewTerritoryMap()
	for i := range accounts {
		acct := accounts[i]
		if _, err := e.Drop(DropCommand{Account: &acct, Pointer: GridPosition(i)}); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// StakeholdersFromContacts drops every contact onto a new stakeholder map.
func StakeholdersFromContacts(contacts []models.ContactPerson) (*Editor, error) {
	e := NewStakeholderMap()
	for i := range contacts {
		c := contacts[i]
		if _, err := e.Drop(DropCommand{Contact: &c, Pointer: GridPosition(i)}); err != nil {
			return nil, err
		}
	}
	return e, nil
}
