package correction

import (
	"strings"
	"testing"

	"github.com/abhisek/chartaudit/internal/judge"
	"github.com/abhisek/chartaudit/internal/record"
)

const validatorNote = "A tunneled pleural catheter was placed on the right.\nBAL was performed in the right middle lobe."

func validProposal() *judge.Proposal {
	return &judge.Proposal{
		TargetCode: "32550",
		Operations: []record.FieldEdit{
			{Path: "pleural.tunneled_catheter", Verb: record.VerbSet, Value: true},
		},
		EvidenceQuote: "A tunneled pleural catheter was placed on the right.",
		Rationale:     "documented",
	}
}

func TestValidateProposalAccepts(t *testing.T) {
	ops, err := ValidateProposal(validProposal(), validatorNote, DefaultConfig())
	if err != nil {
		t.Fatalf("ValidateProposal: %v", err)
	}
	if len(ops) != 1 || ops[0].Path != "pleural.tunneled_catheter" {
		t.Errorf("ops = %v", ops)
	}
}

func TestValidateProposalQuoteWhitespaceNormalized(t *testing.T) {
	p := validProposal()
	p.EvidenceQuote = "A tunneled pleural catheter\n  was placed on the right."

	if _, err := ValidateProposal(p, validatorNote, DefaultConfig()); err != nil {
		t.Fatalf("whitespace-differing quote should pass: %v", err)
	}
}

func TestValidateProposalRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *judge.Proposal)
		cfg     Config
		wantErr string
	}{
		{
			name:    "empty quote",
			mutate:  func(p *judge.Proposal) { p.EvidenceQuote = "" },
			cfg:     DefaultConfig(),
			wantErr: "no evidence quote",
		},
		{
			name:    "paraphrased quote",
			mutate:  func(p *judge.Proposal) { p.EvidenceQuote = "An IPC was inserted on the right side." },
			cfg:     DefaultConfig(),
			wantErr: "not a verbatim excerpt",
		},
		{
			name: "too many operations",
			mutate: func(p *judge.Proposal) {
				for i := 0; i < 6; i++ {
					p.Operations = append(p.Operations, record.FieldEdit{
						Path: "pleural.chest_tube", Verb: record.VerbSet, Value: true,
					})
				}
			},
			cfg:     DefaultConfig(),
			wantErr: "limit is 5",
		},
		{
			name: "unknown verb",
			mutate: func(p *judge.Proposal) {
				p.Operations[0].Verb = "delete"
			},
			cfg:     DefaultConfig(),
			wantErr: "unknown verb",
		},
		{
			name: "path off the allow-list",
			mutate: func(p *judge.Proposal) {
				p.Operations[0].Path = "billing.total"
			},
			cfg:     DefaultConfig(),
			wantErr: "allow-list",
		},
		{
			name:   "override replaces the default list",
			mutate: func(p *judge.Proposal) {},
			cfg: Config{
				MaxOperations: 5,
				AllowList:     []string{"ebus"},
			},
			wantErr: "allow-list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProposal()
			tt.mutate(p)
			_, err := ValidateProposal(p, validatorNote, tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateProposalCanonicalizesAliases(t *testing.T) {
	p := &judge.Proposal{
		TargetCode: "31624",
		Operations: []record.FieldEdit{
			{Path: "bal.performed", Verb: record.VerbSet, Value: true},
		},
		EvidenceQuote: "BAL was performed in the right middle lobe.",
	}

	ops, err := ValidateProposal(p, validatorNote, DefaultConfig())
	if err != nil {
		t.Fatalf("ValidateProposal: %v", err)
	}
	if ops[0].Path != "lavage.performed" {
		t.Errorf("canonical path = %q, want lavage.performed", ops[0].Path)
	}
}

func TestValidateProposalCustomOperationCap(t *testing.T) {
	p := validProposal()
	p.Operations = append(p.Operations, record.FieldEdit{
		Path: "pleural.chest_tube", Verb: record.VerbSet, Value: true,
	})

	cfg := DefaultConfig()
	cfg.MaxOperations = 1
	if _, err := ValidateProposal(p, validatorNote, cfg); err == nil {
		t.Fatal("expected cap violation")
	}
}
