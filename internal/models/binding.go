package models

import (
	"strings"
	"time"
)

type RecordKind string

const (
	KindInvoice   RecordKind = "invoice"
	KindTimesheet RecordKind = "timesheet"
)

// Binding is a record's data merged into a template's slots, ready for a renderer.
type Binding struct {
	Kind  RecordKind
	Title string
	// Date is the record date; renderers stamp it as the document date so
	// unchanged records render identically.
	Date   time.Time
	Slots  []string
	Fields map[string]string
	Table  Table
}

// Table holds a record's line entries: invoice items or timesheet rows.
type Table struct {
	Headers []string
	Rows    [][]string
	// Wide is the index of the free-text column.
	Wide int
}

var totalSlots = map[string]bool{
	"subtotal":    true,
	"total":       true,
	"total_hours": true,
}

func (b *Binding) Field(slot string) string {
	return b.Fields[slot]
}

// HeaderSlots are the slots rendered above the table.
func (b *Binding) HeaderSlots() []string {
	var slots []string
	for _, s := range b.Slots {
		if !totalSlots[s] {
			slots = append(slots, s)
		}
	}
	return slots
}

// TotalSlots are the slots rendered below the table.
func (b *Binding) TotalSlots() []string {
	var slots []string
	for _, s := range b.Slots {
		if totalSlots[s] {
			slots = append(slots, s)
		}
	}
	return slots
}

// SlotLabel turns "account.bank_details" into "Bank Details".
func SlotLabel(slot string) string {
	if i := strings.LastIndex(slot, "."); i >= 0 {
		switch slot[:i] {
		case "client":
			if slot[i+1:] == "name" {
				return "Client"
			}
		case "account":
			if slot[i+1:] == "name" {
				return "From"
			}
		case "period":
			return "Period " + titleWords(slot[i+1:])
		}
		slot = slot[i+1:]
	}
	return titleWords(slot)
}

func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		switch w {
		case "pan":
			words[i] = "PAN"
			continue
		}
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
