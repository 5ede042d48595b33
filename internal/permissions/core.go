package permissions

func init() {
	registerCore()
}

// registerCore installs the built-in permission catalog.
func registerCore() {
	perms := []*Definition{
		{Name: "view:posts", Description: "View posts"},
		{Name: "create:posts", Description: "Create new posts"},
		{Name: "update:posts", Description: "Edit existing posts"},
		{Name: "delete:posts", Description: "Delete posts"},
		{Name: "approve:posts", Description: "Approve or reject submitted posts"},
		{Name: "publish:posts", Description: "Publish posts"},
		{Name: "view:users", Description: "View users"},
		{Name: "create:users", Description: "Create new users"},
		{Name: "update:users", Description: "Edit existing users"},
		{Name: "delete:users", Description: "Delete users"},
		{Name: "view:tags", Description: "View tags"},
		{Name: "create:tags", Description: "Create new tags"},
		{Name: "update:tags", Description: "Edit existing tags"},
		{Name: "delete:tags", Description: "Delete tags"},
		{Name: "view:roles", Description: "View roles and their permissions"},
		{Name: "update:roles", Description: "Manage roles and permission assignments"},
	}

	for _, perm := range perms {
		if err := Register(perm); err != nil {
			panic(err)
		}
	}
}
