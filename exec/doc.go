// Package exec provides the facade over an interactive analysis session.
//
// An [Exec] owns one [session.Session] and exposes its three external
// operations:
//
//   - Load reads a CSV file into a named dataset
//   - Run executes a script against the stored datasets and optionally
//     saves some of its globals back into the session
//   - List renders every stored dataset
//
// # Basic Usage
//
//	facade, err := exec.New(exec.Options{
//	    Engine: luaengine.New(luaengine.Config{}),
//	})
//
//	msg, err := facade.Load(ctx, "sales.csv", "")  // stored as df_1
//	out, err := facade.Run(ctx, "print(len(df_1))", nil)
//	out, err = facade.Run(ctx, "summary = df_1:head()", []string{"summary"})
//	fmt.Println(facade.List(ctx))
//
// # Snapshot and Promotion
//
// A script sees a snapshot of the session taken when it starts. Whatever it
// assigns is private to that run unless its name is listed for promotion,
// and promotion happens only if the whole script succeeds. Promoting over
// an existing name replaces the dataset; a listed name the script never set
// is skipped.
//
// # Errors
//
// Failures are returned as [*Error] values carrying a [Category]:
// CategoryLoad for Load and CategoryExecution for Run. They match [ErrLoad]
// and [ErrExecution] with errors.Is and unwrap to the underlying cause.
//
// # Operations
//
// [Dispatch] routes a named [Operation] with JSON-style arguments to the
// facade, for transports that receive operations by name.
package exec
