package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusPaid},
		{StatusPending, StatusFailed},
		{StatusPaid, StatusProcess},
		{StatusPaid, StatusSuccess},
		{StatusPaid, StatusFailed},
		{StatusProcess, StatusSuccess},
		{StatusProcess, StatusFailed},
	}
	for _, tc := range allowed {
		if !CanTransition(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be allowed", tc[0], tc[1])
		}
	}

	denied := [][2]string{
		{StatusPending, StatusProcess},
		{StatusPending, StatusSuccess},
		{StatusSuccess, StatusFailed},
		{StatusFailed, StatusPending},
		{StatusFailed, StatusPaid},
	}
	for _, tc := range denied {
		if CanTransition(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be denied", tc[0], tc[1])
		}
	}
}
