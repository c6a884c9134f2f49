/*
Package script evaluates a Lua configuration script into a configuration.

The script describes the target machine through the nest module:

	local nest = require("nest")

	function postBuild()
	  print("built " .. nest.gen_root)
	end

	local config = nest.new_config()
	config.hostname = "vaelixd-pc"
	config.locale = nest.Locale{ lang = "en_US.UTF-8", address = "en_AU.UTF-8" }
	config.users = { nest.User{ fullName = "Ada Lovelace", groups = { "wheel" } } }
	config.postBuild = postBuild
	return config

The module provides:

	nest.new_config()  new configuration, hostname from os-release
	nest.Locale{...}   normalized locale
	nest.User{...}     normalized user
	nest.emit(config)  select the configuration instead of returning it
	nest.gen_root      output directory
	nest.os_release    os-release values, keys lower-cased

Field names are matched case-insensitively with underscores ignored, so
fullName, fullname and full_name are the same field.

Hooks are never run. Modules other than nest resolve to inert placeholder
tables during evaluation; they only matter in bundles.
*/
package script
