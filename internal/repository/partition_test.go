package repository

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func leg() LegRecord {
    return LegRecord{
        ID:         7,
        Label:      "London run",
        OriginIATA: "JFK",
        DestIATA:   "LHR",
    }
}

func TestPartitionAssignmentsMixed(t *testing.T) {
    assignments := []AssignmentRecord{
        {PassengerID: 1, FullName: "Ada Hart", TreatAsIndividual: true},
        {PassengerID: 2, FullName: "Ben Cole", TreatAsIndividual: false},
        {PassengerID: 3, FullName: "Cam Diaz", TreatAsIndividual: false},
        {PassengerID: 4, FullName: "Dee Fox", TreatAsIndividual: true},
    }
    groups, counts := PartitionAssignments(leg(), assignments)

    require.Len(t, groups, 3) // two individuals plus one pooled group
    assert.Equal(t, 2, counts.Individuals)
    assert.Equal(t, 1, counts.Grouped) // one pooled group, not one per passenger
    assert.Equal(t, 4, counts.TotalPassengers)

    assert.Equal(t, "INDIVIDUAL", groups[0].GroupType)
    assert.Equal(t, "Ada Hart — JFK → LHR", groups[0].Label)
    assert.Equal(t, []uint64{1}, groups[0].PassengerIDs)

    assert.Equal(t, "INDIVIDUAL", groups[1].GroupType)
    assert.Equal(t, "Dee Fox — JFK → LHR", groups[1].Label)

    pooled := groups[2]
    assert.Equal(t, "GROUP", pooled.GroupType)
    assert.Equal(t, "London run — 2 passengers", pooled.Label)
    assert.ElementsMatch(t, []uint64{2, 3}, pooled.PassengerIDs)
}

func TestPartitionAssignmentsAllIndividuals(t *testing.T) {
    assignments := []AssignmentRecord{
        {PassengerID: 1, FullName: "Ada Hart", TreatAsIndividual: true},
        {PassengerID: 2, FullName: "Ben Cole", TreatAsIndividual: true},
    }
    groups, counts := PartitionAssignments(leg(), assignments)

    require.Len(t, groups, 2) // no pooled group at all
    assert.Equal(t, 2, counts.Individuals)
    assert.Equal(t, 0, counts.Grouped)
    for _, g := range groups {
        assert.Equal(t, "INDIVIDUAL", g.GroupType)
        assert.Len(t, g.PassengerIDs, 1)
    }
}

func TestPartitionAssignmentsAllPooled(t *testing.T) {
    assignments := []AssignmentRecord{
        {PassengerID: 1, FullName: "Ada Hart"},
        {PassengerID: 2, FullName: "Ben Cole"},
        {PassengerID: 3, FullName: "Cam Diaz"},
    }
    groups, counts := PartitionAssignments(leg(), assignments)

    require.Len(t, groups, 1)
    assert.Equal(t, "GROUP", groups[0].GroupType)
    assert.Equal(t, []uint64{1, 2, 3}, groups[0].PassengerIDs)
    assert.Equal(t, 0, counts.Individuals)
    assert.Equal(t, 1, counts.Grouped)
    assert.Equal(t, 3, counts.TotalPassengers)
}

func TestPartitionAssignmentsRouteFallbackLabel(t *testing.T) {
    // A leg without a label falls back to the route for the pooled name.
    l := leg()
    l.Label = ""
    groups, _ := PartitionAssignments(l, []AssignmentRecord{
        {PassengerID: 1, FullName: "Ada Hart"},
    })
    require.Len(t, groups, 1)
    assert.Equal(t, "JFK → LHR — 1 passengers", groups[0].Label)
}

func TestPartitionAssignmentsDeterministic(t *testing.T) {
    assignments := []AssignmentRecord{
        {PassengerID: 5, FullName: "Eve Kim", TreatAsIndividual: true},
        {PassengerID: 6, FullName: "Fay Lin"},
    }
    first, firstCounts := PartitionAssignments(leg(), assignments)
    second, secondCounts := PartitionAssignments(leg(), assignments)
    assert.Equal(t, first, second)
    assert.Equal(t, firstCounts, secondCounts)
}
