// Package runs persists pipeline execution history in SQLite.
//
// Every Process call becomes one row: inserted as running when the engine
// starts, then marked completed or failed exactly once. The schema is owned
// by the embedded migrations; open a database with Open and bring it up to
// date with MigrateUp before constructing a Store.
package runs
