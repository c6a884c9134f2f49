// Package symbols extracts the names a block of Lua source refers to.
//
// Extraction is purely static: the source is parsed with the gopher-lua
// parser and the syntax tree is walked. Nothing is compiled or executed.
//
// Given the source
//
//  function postBuild()
//    local out = nest.gen_root .. "info.md"
//    genInfo(out)
//    log:info("done")
//  end
//
// Extract reports
//
//  Called:     genInfo
//  Qualifiers: nest, log
//  Referenced: nest, genInfo, log
//
// The local variable out is bound inside the function and is therefore not
// reported.
package symbols
