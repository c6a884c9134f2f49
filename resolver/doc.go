// Package resolver computes the dependencies of a hook function.
//
// A Script is the parsed configuration script. Its top-level function
// definitions and require bindings are indexed when it is loaded:
//
//  local json = require("json")          -- import, binds json
//  local encode = require("json").encode -- import, binds encode
//
//  function genInfo() ... end            -- function
//  local function helper() ... end       -- function
//  fmt = function() ... end              -- function
//
// Resolve starts at a target function and follows calls to other top-level
// functions, collecting their source and the imports they use. Calls to
// names without a local definition (builtins, library functions) are skipped
// and recorded in the result. Every function is visited once, so recursive
// and mutually recursive functions terminate.
package resolver
