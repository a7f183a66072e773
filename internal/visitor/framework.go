package visitor

import "strings"

// routeDecoratorSuffixes match HTTP-router-style decorators:
// @app.route, @router.get/post/put/delete/patch, @blueprint.*, @bp.*, @api.*
var routeDecoratorSuffixes = []string{
	".route", ".get", ".post", ".put", ".delete", ".patch",
}

var routeDecoratorPrefixes = []string{
	"app.", "router.", "blueprint.", "bp.", "api.",
}

// fixtureDecorators match test-framework decorators: @pytest.fixture,
// @pytest.mark.*, @patch, @mock.*, @responses.activate.
func isFixtureDecorator(dotted string) bool {
	switch {
	case dotted == "pytest.fixture",
		strings.HasPrefix(dotted, "pytest.mark."),
		dotted == "patch",
		strings.HasPrefix(dotted, "mock."),
		dotted == "responses.activate":
		return true
	}
	return false
}

// taskDecorators match task-queue decorators: @celery.task, @shared_task,
// @huey.task.
func isTaskDecorator(dotted string) bool {
	switch dotted {
	case "celery.task", "shared_task", "huey.task":
		return true
	}
	return strings.HasSuffix(dotted, ".task")
}

// cliDecorators match CLI-framework decorators: @*.command, @*.group,
// @*.callback, @*.default, @*.subcommand (click/typer-style).
func isCLIDecorator(dotted string) bool {
	for _, suffix := range []string{".command", ".group", ".callback", ".default", ".subcommand"} {
		if strings.HasSuffix(dotted, suffix) {
			return true
		}
	}
	return false
}

// isLifecycleDecorator recognizes the lifecycle decorators (property,
// setter/deleter, staticmethod, classmethod, cached_property), which never
// mark framework_route. Nothing calls it, and the penalty engine gives
// these decorators no pin of their own.
func isLifecycleDecorator(dotted string) bool {
	switch {
	case dotted == "property", dotted == "staticmethod", dotted == "classmethod",
		dotted == "cached_property", strings.HasSuffix(dotted, ".setter"),
		strings.HasSuffix(dotted, ".deleter"):
		return true
	}
	return false
}

func isRouteDecorator(dotted string) bool {
	for _, suffix := range routeDecoratorSuffixes {
		if strings.HasSuffix(dotted, suffix) {
			return true
		}
	}
	for _, prefix := range routeDecoratorPrefixes {
		if strings.HasPrefix(dotted, prefix) {
			return true
		}
	}
	return false
}

// IsFrameworkRoute reports whether a decorator's dotted expression marks
// its decorated definition as an implicit root: an HTTP route, a pytest
// fixture/mark, a task-queue callback, or a CLI command (spec section
// 4.4). Lifecycle decorators (property et al.) return false here, since
// they never set framework_route.
func IsFrameworkRoute(dotted string) bool {
	return isRouteDecorator(dotted) || isFixtureDecorator(dotted) ||
		isTaskDecorator(dotted) || isCLIDecorator(dotted)
}

// frameworkBaseClasses are base classes whose subclasses get
// framework_lifecycle treatment for recognized method names (spec 4.4):
// Django/Flask/FastAPI-style lifecycle hooks.
var frameworkBaseClasses = map[string]bool{
	"models.Model":           true, // Django
	"Model":                  true,
	"View":                   true,
	"APIView":                true,
	"TestCase":               true,
	"ModelForm":              true,
	"BaseHTTPRequestHandler": true,
}

var frameworkLifecycleMethods = map[string]bool{
	"save": true, "clean": true, "get_queryset": true, "dispatch": true,
	"setUp": true, "tearDown": true, "setUpClass": true, "tearDownClass": true,
}

// IsFrameworkLifecycleMethod reports whether methodName on a class
// inheriting from baseClasses is a recognized framework lifecycle hook.
func IsFrameworkLifecycleMethod(methodName string, baseClasses []string) bool {
	if !frameworkLifecycleMethods[methodName] {
		return false
	}
	for _, b := range baseClasses {
		if frameworkBaseClasses[b] {
			return true
		}
	}
	return false
}
