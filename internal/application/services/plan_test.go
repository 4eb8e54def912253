package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

func newPlanFixture(t *testing.T, project MapPropertySource) (*PlanService, *ProfileResolver, *countingProvider) {
	t.Helper()
	m := newFakeMaterializer()
	m.props["h2"] = map[string]string{entities.DialectKey: "H2Dialect"}
	m.props["mysql"] = map[string]string{entities.DialectKey: "MySQLDialect"}

	resolver := NewProfileResolver(
		chainOf(t, scopeNames{localScopeRef, []string{"h2", "mysql"}}),
		m, newMemoryStash(), childProject, project, nil,
		WithClock(func() time.Time { return fixedNow }))
	provider := &countingProvider{}
	svc := NewPlanService(recordingTaskFactory{}, NewHookService(&recordingRunner{}, nil), provider, mapAllocations{}, nil)
	return svc, resolver, provider
}

func TestPlanService_Plan(t *testing.T) {
	svc, resolver, provider := newPlanFixture(t, MapPropertySource{ProfileNameKey: "mysql"})

	resp, err := svc.Plan(context.Background(), resolver, dto.PlanRequest{})
	require.NoError(t, err)

	assert.Equal(t, "mysql", resp.Selected)
	var names []string
	for _, task := range resp.Tasks {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"test", "testAllDbProfiles", "test_h2", "test_mysql"}, names)

	mainTask := resp.Tasks[0]
	assert.Equal(t, []dto.Property{{Key: TestTaskProfileInput, Value: "mysql"}}, mainTask.InputProperties)
	assert.Equal(t, []dto.Property{{Key: entities.DialectKey, Value: "MySQLDialect"}}, mainTask.SystemProperties)
	assert.Equal(t, []string{"profileDependenciesMysql"}, mainTask.Classpath)

	grouping := resp.Tasks[1]
	assert.Equal(t, []string{"test_h2", "test_mysql"}, grouping.DependsOn)
	assert.Equal(t, DatabaseTaskGroup, grouping.Group)

	variant := resp.Tasks[2]
	assert.Equal(t, []dto.Property{{Key: TestTaskProfileInput, Value: "h2"}}, variant.InputProperties)
	assert.Empty(t, variant.DependsOn)

	assert.Equal(t, 2, provider.created, "one allocation per profile")
}

func TestPlanService_VariantTaskInjects(t *testing.T) {
	svc, resolver, _ := newPlanFixture(t, nil)

	resp, err := svc.Plan(context.Background(), resolver, dto.PlanRequest{Task: "test_mysql"})
	require.NoError(t, err)

	assert.Equal(t, "mysql", resp.Selected)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "test_mysql", resp.Tasks[0].Name)
	assert.Equal(t, "mysql", resolver.Snapshot().Requested)
}

func TestPlanService_UnknownTask(t *testing.T) {
	svc, resolver, _ := newPlanFixture(t, nil)

	_, err := svc.Plan(context.Background(), resolver, dto.PlanRequest{Task: "integrationTest"})
	assert.Error(t, err)

	_, err = svc.Plan(context.Background(), resolver, dto.PlanRequest{Task: "test_oracle"})
	var unresolved *entities.UnresolvedProfileError
	assert.ErrorAs(t, err, &unresolved)
}
