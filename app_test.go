package halmark

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	// Test setup
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	// Add a resource
	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	// Check that the resource was added
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1) // Try adding resource1 again, should panic
	})

	// Add a resource
	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	// Check that the resource was added
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_callSystem_InjectsResources(t *testing.T) {
	app := NewAppBuilder().Build()
	resource := NewMockResource1("injected")
	app.addResources(resource)

	var got *MockResource1
	app.callSystem(func(r *MockResource1) {
		got = r
	})

	require.NotNil(t, got)
	assert.Equal(t, "injected", got.name)
}

func TestApp_callSystem_InjectsCommands(t *testing.T) {
	app := NewAppBuilder().Build()

	var got *Commands
	app.callSystem(func(cmd *Commands) {
		got = cmd
	})

	require.NotNil(t, got)
	assert.Same(t, app, got.app)
}

func TestApp_callSystem_PanicsOnUnknownDependency(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Panics(t, func() {
		app.callSystem(func(r *MockResource1) {})
	})
}

func TestApp_Run_QuitStopsLoop(t *testing.T) {
	app := NewAppBuilder().Build()

	ticks := 0
	app.UseSystem(System(func(cmd *Commands) {
		ticks++
		if ticks == 3 {
			cmd.Quit(nil)
		}
	}).InStage(Update))

	err := app.Run()

	assert.NoError(t, err)
	assert.Equal(t, 3, ticks)
}

func TestApp_Run_QuitError(t *testing.T) {
	app := NewAppBuilder().Build()

	quitErr := errors.New("surface lost")
	app.UseSystem(System(func(cmd *Commands) {
		cmd.Quit(quitErr)
	}).InStage(Render))

	// Later stages of the quitting tick must not run.
	finaleRan := false
	app.UseSystem(System(func(cmd *Commands) {
		finaleRan = true
	}).InStage(Finale))

	err := app.Run()

	assert.ErrorIs(t, err, quitErr)
	assert.False(t, finaleRan)
}

func TestApp_Run_FirstQuitWins(t *testing.T) {
	app := NewAppBuilder().Build()

	first := errors.New("first")
	app.UseSystem(System(func(cmd *Commands) {
		cmd.Quit(first)
		cmd.Quit(errors.New("second"))
	}).InStage(Update))

	err := app.Run()

	assert.ErrorIs(t, err, first)
}
