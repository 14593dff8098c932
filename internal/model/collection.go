package model

import (
	"time"
)

// ItemStatus represents the status of a single collection item during a bulk run
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusDelivered ItemStatus = "delivered"
	ItemStatusFailed    ItemStatus = "failed"
)

// CollectionItem is one entry of a collection, in platform order
type CollectionItem struct {
	ID     string
	Title  string
	URL    string
	Status ItemStatus
	Error  string
}

// Collection is an ordered group of items referenced by one URL (a playlist)
type Collection struct {
	ID        string
	Title     string
	URL       string
	Items     []*CollectionItem
	Delivered int
	Failed    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCollection creates an empty collection for the given URL
func NewCollection(url string) *Collection {
	now := time.Now()
	return &Collection{
		URL:       url,
		Items:     make([]*CollectionItem, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem appends an item keeping platform order
func (c *Collection) AddItem(item *CollectionItem) {
	if item.Status == "" {
		item.Status = ItemStatusPending
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
}

// MarkDelivered records a successful item delivery
func (c *Collection) MarkDelivered(item *CollectionItem) {
	item.Status = ItemStatusDelivered
	c.Delivered++
	c.UpdatedAt = time.Now()
}

// MarkFailed records an isolated item failure
func (c *Collection) MarkFailed(item *CollectionItem, err error) {
	item.Status = ItemStatusFailed
	if err != nil {
		item.Error = err.Error()
	}
	c.Failed++
	c.UpdatedAt = time.Now()
}

// Len returns the number of items
func (c *Collection) Len() int {
	return len(c.Items)
}

// Pending returns items not processed yet
func (c *Collection) Pending() []*CollectionItem {
	var pending []*CollectionItem
	for _, item := range c.Items {
		if item.Status == ItemStatusPending {
			pending = append(pending, item)
		}
	}
	return pending
}

// HasErrors checks if any item failed
func (c *Collection) HasErrors() bool {
	return c.Failed > 0
}
