// Package harness provides conformance testing for dynamic expressions.
//
// The harness compiles each case of a scenario against one schema type,
// evaluates it over sample rows and, when the scenario names a table,
// lowers boolean cases to SQLite and checks both backends agree.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: people_filters
//	description: "What this scenario validates"
//	schema: ../people.yaml      # enums and types, YAML or CUE
//	type: Person                # element type expression
//	data: ../people_data.yaml   # optional sequence of Person values
//	key: Name                   # labels matched rows
//	table: people               # optional SQLite cross-check
//	cases:
//	  - name: adults
//	    expr: "Age >= 21"
//	    order_by: "Name desc"
//	    expect:
//	      type: Boolean
//	      tree: "(ge (. it Age) 21:Int32)"
//	      rows: [Alice, Bob]
//	      sql: 'SELECT "Name" FROM "people" WHERE "Age" >= ? ORDER BY rowid ASC'
//	  - name: bad operand
//	    expr: 'Age > "x"'
//	    expect:
//	      error: "incompatible with operand types"
//	      position: 4
//
// # Expectations
//
//   - type: static type of the compiled expression
//   - tree: expression tree as printed by expr.Format
//   - rows: key labels of the rows a Boolean case matches, in order
//   - values: formatted results of a non-Boolean case, one per row
//   - sql: statement a Boolean case lowers to
//   - error, position: substring and offset of the expected failure
//
// Paths in a scenario are resolved relative to the scenario file. Every
// scenario gets a fresh record cache and in-memory database, so results
// are identical across runs and suitable for golden snapshot comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/people_filters.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
