package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"voyager.com/cardclient/internal/card"
)

func TestParseCard(t *testing.T) {
	testCases := []struct {
		args     []string
		expected card.Card
		fails    bool
	}{
		{args: []string{"A", "Spade"}, expected: card.New(card.Ace, card.Spade)},
		{args: []string{"queen", "heart"}, expected: card.New(card.Queen, card.Heart)},
		{args: []string{"10", "Club"}, expected: card.New(card.Ten, card.Club)},
		{args: []string{"0"}, expected: card.New(card.Ace, card.Spade)},
		{args: []string{"51"}, expected: card.New(card.King, card.Club)},
		{args: []string{"52"}, fails: true},
		{args: []string{"x"}, fails: true},
		{args: []string{"A", "Star"}, fails: true},
		{args: []string{}, fails: true},
	}

	for _, tc := range testCases {
		got, err := parseCard(tc.args)
		if tc.fails {
			if err == nil {
				t.Errorf("parseCard(%v) = %v, expected an error", tc.args, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseCard(%v) failed: %s", tc.args, err)
			continue
		}
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("parseCard(%v) = %v, expected %v", tc.args, got, tc.expected)
		}
	}
}
