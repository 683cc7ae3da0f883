// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfconfig

import (
	"fmt"
	"log"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/hashicorp/tfcws/internal/tfdiags"
)

// SyntaxLocator extracts the workspace binding by parsing the file as HCL
// and walking the blocks that Terraform itself would accept:
//
//	terraform {
//	  cloud {
//	    organization = "..."
//	    workspaces {
//	      name = "..."
//	    }
//	  }
//	}
//
// and the equivalent backend "remote" / backend "cloud" form. Unlike
// PatternLocator this rejects files that are not valid configuration, and
// it does not match attribute assignments outside of those blocks.
type SyntaxLocator struct {
	fs afero.Afero
	p  *hclparse.Parser
}

var _ Locator = (*SyntaxLocator)(nil)

// NewSyntaxLocator creates and returns a new SyntaxLocator that reads files
// from the given filesystem. If a nil filesystem is passed then the system's
// "real" filesystem will be used, via afero.OsFs.
func NewSyntaxLocator(fs afero.Fs) *SyntaxLocator {
	if fs == nil {
		fs = afero.OsFs{}
	}
	return &SyntaxLocator{
		fs: afero.Afero{Fs: fs},
		p:  hclparse.NewParser(),
	}
}

func (l *SyntaxLocator) FindWorkspace(path string) (WorkspaceRef, tfdiags.Diagnostics) {
	var ref WorkspaceRef
	var diags tfdiags.Diagnostics

	src, err := l.fs.ReadFile(path)
	if err != nil {
		diags = diags.Append(readDiagnostic(path, err))
		return ref, diags
	}

	file, hclDiags := l.p.ParseHCL(src, path)
	diags = diags.Append(hclDiags)
	if file == nil || file.Body == nil || hclDiags.HasErrors() {
		return ref, diags
	}

	// ParseHCL always produces a native syntax body, which we need here so
	// that we can walk nested blocks without a schema.
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		panic("ParseHCL returned non-hclsyntax body")
	}

	for _, block := range body.Blocks {
		if block.Type != "terraform" {
			continue
		}
		for _, inner := range block.Body.Blocks {
			switch inner.Type {
			case "cloud":
				// always relevant
			case "backend":
				if len(inner.Labels) != 1 {
					continue
				}
				if inner.Labels[0] != "remote" && inner.Labels[0] != "cloud" {
					continue
				}
			default:
				continue
			}

			diags = diags.Append(l.decodeCloudBlock(inner, &ref))
			if ref.Valid() {
				log.Printf("[TRACE] tfconfig: found workspace %q in organization %q in %s", ref.Workspace, ref.Organization, path)
				return ref, diags
			}
		}
	}

	diags = diags.Append(notFoundDiagnostic(path, ref))
	return ref, diags
}

// decodeCloudBlock fills in any ref fields that the given cloud or backend
// block declares as constant strings. Fields that are already set are left
// alone so that the first declaration in the file wins.
func (l *SyntaxLocator) decodeCloudBlock(block *hclsyntax.Block, ref *WorkspaceRef) tfdiags.Diagnostics {
	var diags tfdiags.Diagnostics

	if ref.Organization == "" {
		if attr, ok := block.Body.Attributes["organization"]; ok {
			org, moreDiags := stringValue(attr)
			diags = diags.Append(moreDiags)
			ref.Organization = org
		}
	}

	for _, inner := range block.Body.Blocks {
		if inner.Type != "workspaces" || ref.Workspace != "" {
			continue
		}
		if attr, ok := inner.Body.Attributes["name"]; ok {
			name, moreDiags := stringValue(attr)
			diags = diags.Append(moreDiags)
			ref.Workspace = name
		}
	}

	return diags
}

func stringValue(attr *hclsyntax.Attribute) (string, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics

	val, hclDiags := attr.Expr.Value(nil)
	diags = diags.Append(hclDiags)
	if hclDiags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || val.Type() != cty.String {
		diags = diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid attribute value",
			Detail:   fmt.Sprintf("The %s argument must be a string.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		})
		return "", diags
	}
	return val.AsString(), diags
}
