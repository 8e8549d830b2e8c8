package speculative

import "testing"

func TestTierAExactMatch(t *testing.T) {
	if !Similar("open chrome", "open chrome", alwaysSimple) {
		t.Fatal("expected exact match to be similar")
	}
}

func TestTierBPrefixMatch(t *testing.T) {
	if !Similar("find flights from amsterdam", "find flights from amsterdam to lisbon", alwaysSimple) {
		t.Fatal("expected partial-is-prefix-of-final to be similar")
	}
}

func TestTierCEditDistanceOnShortPhrase(t *testing.T) {
	if !Similar("open chrom", "open chrome", alwaysSimple) {
		t.Fatal("expected single-character typo on 2-token phrase to pass tier C")
	}
}

func TestTierDLevenshteinOnLongerPhrase(t *testing.T) {
	if !Similar("search for nearby coffee shops", "search for nearby coffee shop", alwaysSimple) {
		t.Fatal("expected near-identical longer phrase to pass tier D")
	}
}

func TestGateRejectsRoutingMismatch(t *testing.T) {
	isSimpleFirst := func(s string) bool { return s == "open chrome" }
	if Similar("open chrome", "actually never mind", isSimpleFirst) {
		t.Fatal("expected routing mismatch to reject")
	}
}

func TestVerbGateRejectsDifferentVerb(t *testing.T) {
	if Similar("open chrome", "close chrome", alwaysSimple) {
		t.Fatal("expected different leading verb to reject on short phrases")
	}
}
