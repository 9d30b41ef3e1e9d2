package halmark

import "testing"

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	builder := NewAppBuilder()
	app := builder.Build()

	if len(app.stages) != len(defaultStages) {
		t.Errorf("Expected %v stages, got %v", len(defaultStages), len(app.stages))
	}
	for _, stage := range defaultStages {
		if _, ok := app.systems[stage.Name]; !ok {
			t.Errorf("Expected stage %v to be initialized", stage.Name)
		}
	}
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
}

func TestAppBuilder_Build_WithModules(t *testing.T) {
	builder := NewAppBuilder()
	module := &MockModule{}
	builder.UseModule(module)

	builder.Build()

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
	if !module.installed {
		t.Errorf("Expected Install to be called on the module, but it was not")
	}
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	builder := NewAppBuilder()
	builder.UseModule(module1)
	builder.UseModule(module2)

	builder.Build()

	if len(builder.modules) != 2 {
		t.Errorf("Expected 2 modules, got %v", len(builder.modules))
	}
	if !module1.installed {
		t.Errorf("Expected Install to be called on the module 1, but it was not")
	}
	if !module2.installed {
		t.Errorf("Expected Install to be called on the module 2, but it was not")
	}
}

func TestApp_UseStage_InsertsBeforeAndAfter(t *testing.T) {
	app := NewAppBuilder().Build()

	early := Stage{Name: "Early"}
	late := Stage{Name: "Late"}
	app.UseStage(early, BeforeStage(Prelude))
	app.UseStage(late, AfterStage(Finale))

	if app.stages[0].Name != "Early" {
		t.Errorf("Expected Early first, got %v", app.stages[0].Name)
	}
	if app.stages[len(app.stages)-1].Name != "Late" {
		t.Errorf("Expected Late last, got %v", app.stages[len(app.stages)-1].Name)
	}
}

func TestApp_UseSystem_UnknownStagePanics(t *testing.T) {
	app := NewAppBuilder().Build()

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for unknown stage")
		}
	}()
	app.UseSystem(System(func(cmd *Commands) {}).InStage(Stage{Name: "Nope"}))
}
