package recon

import (
	"testing"

	"bitbucket.org/swelyradist/agency_backend/models"
)

func TestLinkCodes_PairsAliasFamilies(t *testing.T) {
	rowsA := []codedProduct{
		{SourceSystem: models.SourceSystemERPBot, ProductCode: "SB28", ProductName: "Solace 28"},
		{SourceSystem: models.SourceSystemERPBot, ProductCode: "BW30", ProductName: "Brightway 30"},
	}
	rowsB := []codedProduct{
		{SourceSystem: models.SourceSystemLocalSales, ProductCode: "SBE28", ProductName: "Solace-28"},
		{SourceSystem: models.SourceSystemLocalSales, ProductCode: "CV90", ProductName: "Covessa 90"},
	}

	links := linkCodes(rowsA, rowsB)
	if len(links) != 1 {
		t.Fatalf("links = %d, want 1", len(links))
	}
	if links[0].CodeA != "SB28" || links[0].CodeB != "SBE28" {
		t.Errorf("linked %s <-> %s, want SB28 <-> SBE28", links[0].CodeA, links[0].CodeB)
	}
}

func TestLinkCodes_NeverLinksDifferentNumbers(t *testing.T) {
	rowsA := []codedProduct{{SourceSystem: models.SourceSystemERPBot, ProductCode: "SB28"}}
	rowsB := []codedProduct{{SourceSystem: models.SourceSystemLocalSales, ProductCode: "SB29"}}
	if links := linkCodes(rowsA, rowsB); len(links) != 0 {
		t.Fatalf("links = %d, want 0 for differing numeric suffixes", len(links))
	}
}
