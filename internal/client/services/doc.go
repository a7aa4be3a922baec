// Package services holds the storefront use cases on top of the API client,
// the guest store, the session and the auth gate.
//
//   - MergeService folds the guest cart (and optionally the guest wishlist)
//     into the account on sign-in.
//   - AuthService signs customers in and out and guards protected actions.
//   - ShopService routes cart, wishlist, catalog and checkout operations to
//     the account or the guest store depending on the session.
//   - ProfileService reads and changes the signed-in customer's profile and
//     password.
//
// Errors shown to a customer go through UserMessage.
package services
