package model

import "time"

type GroceryList struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userID"`
	Title     string        `json:"title"`
	Items     []GroceryItem `json:"items"`
	CreatedAt time.Time     `json:"createdAt"`
}

type GroceryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsChecked bool   `json:"isChecked"`
	Category  string `json:"category"`
}

// ItemIndex returns the position of the item with the given id, or -1.
func (l *GroceryList) ItemIndex(itemID string) int {
	for i, item := range l.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// CheckedCount returns how many items are checked off.
func (l *GroceryList) CheckedCount() int {
	n := 0
	for _, item := range l.Items {
		if item.IsChecked {
			n++
		}
	}
	return n
}
