package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbdeps/internal/dependency"
	"wbdeps/internal/document"
)

func loadDoc(t *testing.T, s string) interface{} {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var doc interface{}
	require.NoError(t, dec.Decode(&doc))
	return doc
}

// functionAppDoc has a link whose request references TenantId without
// declaring it.
const functionAppDoc = `{
  "items": [
    {
      "type": 9,
      "content": {
        "parameters": [
          {"name": "FunctionApp", "query": "resources | where type == 'microsoft.web/sites'"},
          {"name": "TenantId", "query": "resourcecontainers | project tenantId"}
        ]
      }
    },
    {
      "type": 11,
      "content": {
        "links": [
          {
            "linkTarget": "ArmAction",
            "armActionContext": {
              "path": "{FunctionApp}/functions/Sync",
              "headers": [{"name": "x-ms-tenant", "value": "{TenantId}"}]
            },
            "criteriaData": [{"criterionType": "param", "value": "{FunctionApp}"}]
          }
        ]
      }
    }
  ]
}`

const linkPath = "items[1].content.links[0]"

func TestAnalyze_ReportsMissingDependency(t *testing.T) {
	report := Analyze(loadDoc(t, functionAppDoc))

	require.Equal(t, StateChecked, report.State)
	node := report.Node(linkPath)
	require.NotNil(t, node)
	assert.Equal(t, UnderDeclared, node.Classification)
	assert.Equal(t, []string{"TenantId"}, node.Missing)
	assert.Empty(t, node.Extra)
	assert.True(t, report.HasDefects())
}

func TestRepair_AppendsMissingDependency(t *testing.T) {
	doc := loadDoc(t, functionAppDoc)

	report := Repair(doc, DefaultPolicy())

	require.Equal(t, StateRepairsApplied, report.State)
	require.Len(t, report.RepairsApplied, 1)
	edit := report.RepairsApplied[0]
	assert.Equal(t, linkPath, edit.Path)
	assert.Equal(t, "criteriaData", edit.Field)
	assert.Equal(t, "/items/1/content/links/0/criteriaData", edit.Pointer)

	want := []interface{}{
		map[string]interface{}{"criterionType": "param", "value": "{FunctionApp}"},
		map[string]interface{}{"criterionType": "param", "value": "{TenantId}"},
	}
	link := doc.(map[string]interface{})["items"].([]interface{})[1].(map[string]interface{})["content"].(map[string]interface{})["links"].([]interface{})[0].(map[string]interface{})
	if diff := cmp.Diff(want, link["criteriaData"]); diff != "" {
		t.Errorf("criteriaData mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Consistent, report.Node(linkPath).Classification)
	assert.False(t, report.HasDefects())
}

const cyclicDoc = `{
  "items": [
    {
      "content": {
        "parameters": [
          {"name": "X", "query": "where a == '{Y}'"},
          {"name": "Y", "query": "where b == '{X}'"},
          {"name": "Z", "query": "static"}
        ]
      }
    },
    {
      "content": {
        "query": "{\"version\":\"CustomEndpoint/1.0\",\"url\":\"https://example.net/{X}\"}",
        "criteriaData": []
      }
    },
    {
      "content": {
        "query": "{\"version\":\"CustomEndpoint/1.0\",\"url\":\"https://example.net/{Z}\"}",
        "criteriaData": []
      }
    }
  ]
}`

func TestAnalyze_CycleMakesConsumersUnresolvable(t *testing.T) {
	report := Analyze(loadDoc(t, cyclicDoc))

	if diff := cmp.Diff([][]string{{"X", "Y"}}, report.Cycles); diff != "" {
		t.Errorf("cycles mismatch (-want +got):\n%s", diff)
	}

	blocked := report.Node("items[1].content")
	require.NotNil(t, blocked)
	assert.Equal(t, Unresolvable, blocked.Classification)
	assert.Empty(t, blocked.Missing, "unresolvable nodes are not checked further")

	free := report.Node("items[2].content")
	require.NotNil(t, free)
	assert.Equal(t, UnderDeclared, free.Classification)
	assert.Equal(t, []string{"Z"}, free.Missing)

	var cycleFindings []Finding
	for _, f := range report.Findings {
		if f.Kind == FindingCycle {
			cycleFindings = append(cycleFindings, f)
		}
	}
	require.Len(t, cycleFindings, 1)
	assert.Equal(t, "items[0].content.parameters[0]", cycleFindings[0].Path)
	assert.Equal(t, "dependency cycle X -> Y -> X", cycleFindings[0].Message)
}

func TestRepair_LeavesUnresolvableNodesAlone(t *testing.T) {
	doc := loadDoc(t, cyclicDoc)

	report := Repair(doc, DefaultPolicy())

	require.Len(t, report.RepairsApplied, 1)
	assert.Equal(t, "items[2].content", report.RepairsApplied[0].Path)
	assert.Equal(t, Unresolvable, report.Node("items[1].content").Classification)
	assert.Equal(t, Consistent, report.Node("items[2].content").Classification)
}

func TestAnalyze_DefinitionEdges(t *testing.T) {
	doc := loadDoc(t, `{"parameters": [
		{"name": "FunctionApp", "query": "resources | where type == 'microsoft.web/sites'"},
		{"name": "ResourceGroup", "query": "resources | where id == '{FunctionApp}' | project resourceGroup"}
	]}`)

	r := build(doc, newOptions(nil))

	assert.Equal(t, []dependency.NodeID{"FunctionApp"}, r.graph.Dependencies("ResourceGroup"))
	assert.Empty(t, r.graph.Dependencies("FunctionApp"))
	assert.Empty(t, r.cycles)
	assert.Equal(t, "parameters[1]", r.graph.Get("ResourceGroup").DefinedAt)
}

func TestAnalyze_ReferenceSet(t *testing.T) {
	doc := loadDoc(t, `{"items": [{
		"url": "https://{Host}/api/{Action}",
		"urlParams": [{"key": "tenantId", "value": "{Tenant}"}],
		"criteriaData": []
	}]}`)

	report := Analyze(doc)

	node := report.Node("items[0]")
	require.NotNil(t, node)
	assert.Equal(t, []string{"Host", "Action", "Tenant"}, node.References)
	assert.ElementsMatch(t, []UnresolvedReference{
		{Path: "items[0]", Variable: "Host"},
		{Path: "items[0]", Variable: "Action"},
		{Path: "items[0]", Variable: "Tenant"},
	}, report.UnresolvedReferences)
}

func TestAnalyze_IgnoreVariables(t *testing.T) {
	doc := loadDoc(t, `{"url": "https://{Host}/{TimeRange}", "criteriaData": []}`)

	report := Analyze(doc, WithIgnoreVariables("TimeRange"))

	assert.Equal(t, []UnresolvedReference{{Path: "$", Variable: "Host"}}, report.UnresolvedReferences)
}

func TestAnalyze_OverDeclaredAndDuplicates(t *testing.T) {
	doc := loadDoc(t, `{"parameters": [{"name": "A", "query": "a"}, {"name": "B", "query": "b"}],
	"link": {
		"url": "https://example.net/{A}",
		"criteriaData": [
			{"criterionType": "param", "value": "{A}"},
			{"criterionType": "param", "value": "{B}"},
			{"criterionType": "param", "value": "{A}"}
		]
	}}`)

	report := Analyze(doc)

	node := report.Node("link")
	require.NotNil(t, node)
	assert.Equal(t, OverDeclared, node.Classification)
	assert.Equal(t, []string{"B"}, node.Extra)
	assert.Equal(t, []string{"A"}, node.Duplicates)
	assert.True(t, report.HasDefects(), "duplicates are always a defect")

	var dup *Finding
	for i := range report.Findings {
		if report.Findings[i].Kind == FindingDuplicateDependency {
			dup = &report.Findings[i]
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, "A", dup.Variable)
}

func TestRepair_Policies(t *testing.T) {
	const doc = `{"parameters": [{"name": "A", "query": "a"}, {"name": "B", "query": "b"}, {"name": "C", "query": "c"}],
	"link": {
		"url": "https://example.net/{A}/{C}",
		"criteriaData": [
			{"criterionType": "param", "value": "{A}"},
			{"criterionType": "param", "value": "{B}"},
			{"criterionType": "param", "value": "{A}"},
			{"criterionType": "time", "value": "{TimeRange}"}
		]
	}}`

	tests := []struct {
		name   string
		policy Policy
		want   []string
	}{
		{
			name:   "default adds missing and drops duplicates",
			policy: DefaultPolicy(),
			want:   []string{"{A}", "{B}", "{TimeRange}", "{C}"},
		},
		{
			name:   "remove extra",
			policy: Policy{AddMissing: true, RemoveExtra: true, DropDuplicates: true},
			want:   []string{"{A}", "{TimeRange}", "{C}"},
		},
		{
			name:   "keep duplicates",
			policy: Policy{AddMissing: true},
			want:   []string{"{A}", "{B}", "{A}", "{TimeRange}", "{C}"},
		},
		{
			name:   "report only",
			policy: Policy{},
			want:   []string{"{A}", "{B}", "{A}", "{TimeRange}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := loadDoc(t, doc)
			Repair(d, tt.policy)

			var got []string
			for _, entry := range d.(map[string]interface{})["link"].(map[string]interface{})["criteriaData"].([]interface{}) {
				got = append(got, entry.(map[string]interface{})["value"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepair_MakesEveryConsumerConsistent(t *testing.T) {
	doc := loadDoc(t, `{"items": [
		{"content": {"parameters": [
			{"name": "Subscription", "query": "s"},
			{"name": "Workspace", "query": "where sub == '{Subscription}'"}
		]}},
		{"content": {"query": "{\"url\":\"https://example.net/{Workspace}\",\"body\":\"{\\\"sub\\\":\\\"{Subscription}\\\"}\"}"}},
		{"content": {"links": [{"armActionContext": {"path": "/x/{Workspace}"}}]}},
		{"content": {"query": "{\"url\":\"https://example.net\"}", "criteriaData": []}}
	]}`)

	before := Analyze(doc)
	require.Empty(t, before.Cycles)

	Repair(doc, Policy{AddMissing: true})
	after := Analyze(doc)

	require.NotEmpty(t, after.Nodes)
	for _, n := range after.Nodes {
		assert.Equal(t, Consistent, n.Classification, n.Path)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	doc := loadDoc(t, canonicalDoc)
	opts := []Option{WithCanonicalRules(functionAppRule)}

	first := Repair(doc, DefaultPolicy(), opts...)
	require.NotEmpty(t, first.RepairsApplied)

	snapshot, err := json.Marshal(doc)
	require.NoError(t, err)

	second := Repair(doc, DefaultPolicy(), opts...)
	assert.Equal(t, StateNoActionNeeded, second.State)
	assert.Empty(t, second.RepairsApplied)

	again, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(again))
}

func TestAnalyze_Deterministic(t *testing.T) {
	first, err := json.Marshal(Analyze(loadDoc(t, cyclicDoc)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, err := json.Marshal(Analyze(loadDoc(t, cyclicDoc)))
		require.NoError(t, err)
		require.Equal(t, string(first), string(next))
	}
}

func TestAnalyze_EmptyDocuments(t *testing.T) {
	for _, doc := range []interface{}{nil, map[string]interface{}{}, []interface{}{}, "text"} {
		report := Analyze(doc)
		assert.Empty(t, report.Cycles)
		assert.Empty(t, report.Nodes)
		assert.Empty(t, report.Findings)
		assert.False(t, report.HasDefects())

		out, err := json.Marshal(report)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"cycles":[]`)
	}
}

func TestAnalyze_FindingsDoNotStopTraversal(t *testing.T) {
	doc := loadDoc(t, `{"items": [
		{"criteriaData": [{"criterionType": "param", "value": "{A}"}]},
		{"name": "Token", "query": "q", "url": "https://{Host}"},
		{"url": "https://{Host}", "criteriaData": "{Host}"},
		{"url": "https://example.net/{Host}", "criteriaData": []}
	]}`)

	report := Analyze(doc)

	kinds := make(map[FindingKind]int)
	for _, f := range report.Findings {
		kinds[f.Kind]++
	}
	assert.Equal(t, 2, kinds[FindingMalformedNode])
	assert.Equal(t, 1, kinds[FindingAmbiguous])

	ambiguous := report.Node("items[1]")
	require.NotNil(t, ambiguous)
	assert.Equal(t, "Token", ambiguous.Name)
	assert.Equal(t, "consumer", ambiguous.Kind)

	require.NotNil(t, report.Node("items[3]"), "nodes after malformed ones are still checked")
	assert.True(t, report.HasDefects())
}

func TestAnalyze_DuplicateDefinitions(t *testing.T) {
	doc := loadDoc(t, `{"items": [
		{"content": {"parameters": [{"name": "DeviceList", "query": "a"}]}},
		{"content": {"parameters": [{"name": "DeviceList", "query": "b"}]}},
		{"content": {"items": [{"content": {"parameters": [{"name": "DeviceList", "query": "c"}]}}]}}
	]}`)

	report := Analyze(doc)

	var dups []Finding
	for _, f := range report.Findings {
		if f.Kind == FindingDuplicateDefinition {
			dups = append(dups, f)
		}
	}
	require.Len(t, dups, 1, "the nested group has its own scope")
	assert.Equal(t, "items[1].content.parameters[0]", dups[0].Path)
	assert.Contains(t, dups[0].Message, "items[0].content.parameters[0]")
}

func TestAnalyze_DefinitionWithDependencyList(t *testing.T) {
	doc := loadDoc(t, `{"parameters": [
		{"name": "Region", "query": "r"},
		{"name": "Sites", "query": "{\"url\":\"https://example.net/{Region}\"}", "criteriaData": []}
	]}`)

	report := Analyze(doc)

	node := report.Node("parameters[1]")
	require.NotNil(t, node)
	assert.Equal(t, "definition", node.Kind)
	assert.Equal(t, "Sites", node.Name)
	assert.Equal(t, []string{"Region"}, node.Missing)
}

func TestReport_Summary(t *testing.T) {
	report := Analyze(loadDoc(t, cyclicDoc))

	assert.Equal(t, Summary{
		Nodes:         2,
		UnderDeclared: 1,
		Unresolvable:  1,
		Cycles:        1,
		Findings:      1,
	}, report.Summary)
}

func criteriaValues(t *testing.T, node map[string]interface{}) []string {
	t.Helper()
	list, ok := node["criteriaData"].([]interface{})
	require.True(t, ok, "criteriaData is a list")
	var out []string
	for _, entry := range list {
		out = append(out, entry.(map[string]interface{})["value"].(string))
	}
	return out
}

func TestRepair_ListWithUnchangedLength(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		policy   Policy
	}{
		{
			name:     "duplicate dropped and missing added",
			declared: `[{"criterionType": "param", "value": "{A}"}, {"criterionType": "param", "value": "{A}"}]`,
			policy:   DefaultPolicy(),
		},
		{
			name:     "extra removed and missing added",
			declared: `[{"criterionType": "param", "value": "{A}"}, {"criterionType": "param", "value": "{X}"}]`,
			policy:   Policy{AddMissing: true, RemoveExtra: true, DropDuplicates: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadDoc(t, fmt.Sprintf(`{
			  "parameters": [{"name": "A", "query": "a"}, {"name": "B", "query": "b"}, {"name": "X", "query": "x"}],
			  "link": {"url": "https://example.net/{A}/{B}", "criteriaData": %s}
			}`, tt.declared))

			report := Repair(doc, tt.policy)

			require.Len(t, report.RepairsApplied, 1)
			assert.Equal(t, []string{"{A}", "{B}"}, criteriaValues(t, linkOf(doc)))
			assert.Equal(t, Consistent, report.Node("link").Classification)
			assert.False(t, report.HasDefects())
		})
	}
}

func TestRepair_NullDependencyList(t *testing.T) {
	doc := loadDoc(t, `{
	  "parameters": [{"name": "A", "query": "a"}],
	  "link": {"url": "https://example.net/{A}", "criteriaData": null}
	}`)

	before := Analyze(doc)
	require.Equal(t, UnderDeclared, before.Node("link").Classification)

	report := Repair(doc, DefaultPolicy())

	require.Len(t, report.RepairsApplied, 1)
	edit := report.RepairsApplied[0]
	assert.Nil(t, edit.Old)
	assert.False(t, edit.Created, "the field existed, so it is replaced")
	assert.Equal(t, []string{"{A}"}, criteriaValues(t, linkOf(doc)))
	assert.Equal(t, Consistent, report.Node("link").Classification)
}

func TestCommit_AllOrNothing(t *testing.T) {
	doc := loadDoc(t, `{"a": {"criteriaData": [{"value": "{A}"}]}, "b": {}}`)
	snapshot, err := json.Marshal(doc)
	require.NoError(t, err)

	field := document.FieldPath{"criteriaData"}
	existing := doc.(map[string]interface{})["a"].(map[string]interface{})["criteriaData"]
	replace := stagedEdit{path: document.Path{document.Key("a")}, field: field, old: existing, new: []interface{}{}}
	add := stagedEdit{path: document.Path{document.Key("b")}, field: field, created: true, new: []interface{}{}}
	broken := stagedEdit{path: document.Path{document.Key("missing")}, field: field, new: []interface{}{}}

	applied, err := commit(doc, []stagedEdit{replace, add, broken})
	require.Error(t, err)
	assert.Nil(t, applied)

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(after), "applied edits are reverted")

	applied, err = commit(doc, []stagedEdit{replace, add})
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.False(t, applied[0].Created)
	assert.True(t, applied[1].Created)
	assert.Equal(t, "/b/criteriaData", applied[1].Pointer)
}

func TestAnalyze_LocalVariablesInSiblingGroups(t *testing.T) {
	doc := loadDoc(t, `{"items": [
		{"content": {"items": [{"content": {"parameters": [{"name": "A", "query": "where b == '{B}'"}]}}]}},
		{"content": {"items": [{"content": {"parameters": [{"name": "B", "query": "where a == '{A}'"}]}}]}}
	]}`)

	report := Analyze(doc)

	assert.Empty(t, report.Cycles, "neither variable is visible to the other")
	assert.Equal(t, []UnresolvedReference{
		{Path: "items[0].content.items[0].content.parameters[0]", Variable: "B"},
		{Path: "items[1].content.items[0].content.parameters[0]", Variable: "A"},
	}, report.UnresolvedReferences)
}

func TestAnalyze_ScopedResolution(t *testing.T) {
	doc := loadDoc(t, `{"items": [
		{"content": {
		  "parameters": [{"name": "Region", "query": "r", "isGlobal": true}],
		  "items": [{"content": {"parameters": [
		    {"name": "A", "query": "where b == '{B}'"},
		    {"name": "B", "query": "where a == '{A}'"}
		  ]}}]
		}},
		{"content": {"items": [
		  {"content": {"parameters": [{"name": "A", "query": "static"}]}},
		  {"url": "https://example.net/{A}/{Region}", "criteriaData": []}
		]}}
	]}`)

	report := Analyze(doc)

	if diff := cmp.Diff([][]string{{"A@items[0].content", "B"}}, report.Cycles); diff != "" {
		t.Errorf("cycles mismatch (-want +got):\n%s", diff)
	}

	consumer := report.Node("items[1].content.items[1]")
	require.NotNil(t, consumer)
	assert.Equal(t, UnderDeclared, consumer.Classification, "the sibling A is not on the cycle")
	assert.Equal(t, []string{"A", "Region"}, consumer.Missing)
	assert.Empty(t, report.UnresolvedReferences)

	var cycle *Finding
	for i := range report.Findings {
		if report.Findings[i].Kind == FindingCycle {
			cycle = &report.Findings[i]
		}
	}
	require.NotNil(t, cycle)
	assert.Equal(t, "A", cycle.Variable)
	assert.Equal(t, "items[0].content.items[0].content.parameters[0]", cycle.Path)
}
