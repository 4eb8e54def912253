package testtask

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
	"github.com/reglet-dev/dbmatrix/internal/application/services"
	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
	"github.com/reglet-dev/dbmatrix/internal/domain/values"
)

type nopListener struct{}

func (nopListener) BeforeTest(context.Context, entities.TestDescriptor) error { return nil }
func (nopListener) AfterTest(context.Context, entities.TestDescriptor, entities.TestResult) error {
	return nil
}

func TestSpec_Info(t *testing.T) {
	spec := NewSpec("test", "verification", "Runs the tests")
	spec.SetInputProperty(services.TestTaskProfileInput, "h2")
	spec.SetInputProperty(services.TestTaskProfileInput, "mysql")
	spec.SetSystemProperty(entities.DialectKey, "MySQLDialect")
	deps := entities.NewDependencySet(values.MustNewProfileName("mysql"))
	spec.AddClasspath(deps)
	spec.AddClasspath(deps)
	spec.AddClasspath(nil)
	spec.AddBeforeAction(ports.TaskAction{Owner: "mysql", Action: entities.Action{Name: "start", Command: []string{"up"}}})
	spec.AddAfterAction(ports.TaskAction{Owner: services.GlobalOwner, Action: entities.Action{Name: "report"}})
	spec.AddTestListener(nopListener{})
	spec.DependsOn("compile")
	spec.DependsOn("compile")

	info := spec.Info()
	assert.Equal(t, "mysql", info.Profile)
	assert.Equal(t, []dto.Property{{Key: services.TestTaskProfileInput, Value: "mysql"}}, info.InputProperties, "set replaces in place")
	assert.Equal(t, []string{"profileDependenciesMysql"}, info.Classpath)
	assert.Equal(t, []dto.HookInfo{{Owner: "mysql", Name: "start", Command: []string{"up"}}}, info.BeforeActions)
	assert.Equal(t, []string{"compile"}, info.DependsOn)
	assert.Equal(t, 1, info.Listeners)
	assert.Len(t, spec.BeforeActions(), 1)
	assert.Len(t, spec.AfterActions(), 1)
	assert.Len(t, spec.Listeners(), 1)
}

func TestFactory_CopyTask(t *testing.T) {
	f := Factory{}
	base := f.NewTask("test", "verification", "Runs the tests")
	base.SetSystemProperty("shared", "1")

	variant := f.CopyTask(base, "test_h2", "Runs against h2")
	variant.SetSystemProperty("only.variant", "1")

	info := variant.Info()
	assert.Equal(t, "test_h2", info.Name)
	assert.Equal(t, "verification", info.Group)
	assert.Equal(t, "Runs against h2", info.Description)
	assert.Len(t, info.SystemProperties, 2)
	assert.Len(t, base.Info().SystemProperties, 1, "copy does not alias the base")
}

type foreignTask struct {
	ports.TestTask
	info dto.TaskInfo
}

func (f foreignTask) Info() dto.TaskInfo { return f.info }

func TestFactory_CopyForeignTask(t *testing.T) {
	base := foreignTask{info: dto.TaskInfo{
		Name:             "test",
		Group:            "verification",
		SystemProperties: []dto.Property{{Key: "a", Value: "1"}},
		DependsOn:        []string{"compile"},
	}}

	info := Factory{}.CopyTask(base, "test_h2", "copy").Info()
	require.Len(t, info.SystemProperties, 1)
	assert.Equal(t, []string{"compile"}, info.DependsOn)
}
